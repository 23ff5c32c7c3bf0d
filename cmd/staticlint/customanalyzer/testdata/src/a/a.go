package main

import (
	"fmt"
	"os"
	osAlias "os"
)

func helper() {
	os.Exit(2)
}

func main() {
	fmt.Println("start")
	defer func() {
		os.Exit(3)
	}()
	if len(os.Args) > 5 {
		os.Exit(1) // want "direct os.Exit call in main function"
	}
	osAlias.Exit(0) // want "direct os.Exit call in main function"
	helper()
}
