package main

import "github.com/3esharf1k/phone-book/cmd"

func main() {
	cmd.Execute()
}
