// Command xsdparse prints the top-level declarations of XML Schema
// documents, and the types reachable from a set of root types.
//
// Usage:
//
//	xsdparse [--root name]... file.xsd ...
package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/CognitoIQ/xsd2gml/closure"
	"github.com/CognitoIQ/xsd2gml/gmlgen"
	"github.com/CognitoIQ/xsd2gml/internal/commandline"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

func main() {
	log.SetFlags(0)
	var roots commandline.Strings
	pflag.Var(&roots, "root", "print the closure of these complex types")
	pflag.Parse()

	if pflag.NArg() < 1 {
		log.Fatalf("Usage: %s [--root name] file.xsd ...", os.Args[0])
	}
	var l gmlgen.Loader
	docs, err := l.LoadAll(pflag.Args()...)
	if err != nil {
		log.Fatal(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, doc := range docs {
		s, err := xsd.Parse(doc)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(w, "# %s\n", s.TargetNS)
		for _, d := range s.Declarations() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Kind(), d.Ident(), describe(d))
		}
		if len(roots) > 0 {
			if err := printClosure(w, s, roots); err != nil {
				log.Fatal(err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}

func describe(d xsd.Declaration) string {
	switch d := d.(type) {
	case *xsd.ComplexType:
		switch {
		case d.HasSuper():
			return "extends " + d.Base.Local
		case d.Content == xsd.SimpleContent:
			return "value " + d.ValueType.Local
		}
		return fmt.Sprintf("%d properties", len(d.Properties))
	case *xsd.SimpleType:
		var names []string
		for _, ref := range d.Refs {
			names = append(names, ref.Local)
		}
		return fmt.Sprint(names)
	case *xsd.Element:
		return d.Type.Local
	}
	return ""
}

func printClosure(w *tabwriter.Writer, s *xsd.Schema, roots []string) error {
	walker, err := closure.New(s)
	if err != nil {
		return err
	}
	c, err := walker.Walk(roots...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# closure of %v\n", roots)
	for _, r := range c.Roots {
		var related []string
		for _, t := range r.Types {
			related = append(related, t.Name)
		}
		fmt.Fprintf(w, "%s\t%v\n", r.Root.Name, related)
	}
	for _, st := range c.SimpleTypes {
		fmt.Fprintf(w, "%s\t%s\n", st.Name, describe(st))
	}
	return nil
}
