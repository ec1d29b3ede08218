package main

import (
	"log"
	"os"

	"github.com/CognitoIQ/xsd2gml/gmlgen"
)

func main() {
	log.SetFlags(0)
	var cfg gmlgen.Config
	cfg.Option(gmlgen.DefaultOptions...)
	cfg.Option(gmlgen.LogOutput(log.New(os.Stderr, "", 0)))

	if err := cfg.Run(os.Args[1:]...); err != nil {
		log.Fatal(err)
	}
}
