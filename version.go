package main

import "fmt"

const redisctlVersion = "0.1.0"

func printVersion() {
	fmt.Println("redisctl " + redisctlVersion)
}
