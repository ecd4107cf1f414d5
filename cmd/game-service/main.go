package main

import (
	"os"

	"github.com/rkwai/rag-system/gameservice"
)

func main() {
	if err := gameservice.Run(); err != nil {
		os.Exit(1)
	}
}
