package main

import (
	"flag"
	"fmt"

	"github.com/sigflow/sigflow/config"
)

type nodesCommand struct{}

func (cmd *nodesCommand) Name() string {
	return "nodes"
}

func (cmd *nodesCommand) Help() string {
	return "Show the list of registered node types"
}

func (cmd *nodesCommand) Register(fs *flag.FlagSet) {}

func (cmd *nodesCommand) Run() error {
	fmt.Println("Registered node types:")
	for _, name := range config.Default().Types() {
		fmt.Printf("\t%s\n", name)
	}
	return nil
}
