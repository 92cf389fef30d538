package main

import "github.com/erazemk/inventario/internal/cli"

func main() {
	cli.Execute()
}
