package main

import "github.com/edgeflare/pgrc/cmd/pgrc"

func main() {
	pgrc.Main()
}
