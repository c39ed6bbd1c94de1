package main

import (
	"fmt"

	"github.com/fwojciec/unhtml"
	"github.com/fwojciec/unhtml/htmltomarkdown"
)

// Run executes the select command.
func (c *SelectCmd) Run(deps *Dependencies) error {
	sel, err := deps.Parser.Compile(c.Selector)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unhtml.ErrorMessage(err))
		return err
	}

	docs, err := loadDocuments(deps, c.Files, c.Remote)
	if err != nil {
		return err
	}

	extract := c.extractFunc()
	results, err := decodeDocuments(deps.Ctx, docs, deps.Concurrency, func(d document) ([]string, error) {
		root, err := deps.Parser.Parse(d.html)
		if err != nil {
			return nil, err
		}
		scope := unhtml.Narrow(unhtml.ScopeOf(root), sel)

		switch {
		case c.All:
			return unhtml.Each(extract)(scope)
		case c.Optional:
			v, _ := unhtml.Optional(extract)(scope)
			if v == nil {
				deps.Logger.Debug("no match", "document", d.name, "selector", c.Selector)
				return nil, nil
			}
			return []string{*v}, nil
		}
		v, err := extract(scope)
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unhtml.ErrorMessage(err))
		return err
	}

	for _, values := range results {
		for _, v := range values {
			fmt.Fprintln(deps.Stdout, v)
		}
	}
	return nil
}

// extractFunc returns the extraction matching the --attr and --markdown flags.
func (c *SelectCmd) extractFunc() unhtml.ExtractFunc[string] {
	if c.Markdown {
		return func(scope unhtml.Scope) (string, error) {
			md, err := unhtml.ExtractHTML[htmltomarkdown.Markdown](scope)
			return string(md), err
		}
	}
	src := unhtml.ParseSource(c.Attr)
	switch src.Kind {
	case unhtml.SourceText:
		return unhtml.Text[string]()
	case unhtml.SourceAttr:
		return unhtml.Attr[string](src.Attr)
	}
	return unhtml.HTML[string]()
}
