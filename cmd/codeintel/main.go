// Command codeintel is a minimal smoke test exercising the Engine Facade directly: it
// indexes its own module's source tree and prints a handful of query results. Not a CLI,
// not wired to any transport.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/heefoo/codeintel/internal/engine"
)

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	e := engine.New()
	ctx := context.Background()

	var batch []engine.FileInput
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			return nil
		}
		batch = append(batch, engine.FileInput{Path: path, Content: content})
		return nil
	})
	if err != nil {
		log.Fatalf("walk %s: %v", root, err)
	}

	indexed := e.IndexFiles(ctx, batch)
	stats := e.Stats()
	fmt.Printf("indexed %d/%d files: %+v\n", indexed, len(batch), stats)

	for _, sym := range e.FindSymbols("main", "") {
		fmt.Printf("symbol: %s (%s) %s:%d\n", sym.QualifiedName, sym.Kind, sym.FilePath, sym.StartLine)
	}

	for _, hit := range e.Search("engine facade", 3) {
		fmt.Printf("search hit: %s:%d-%d (score %.3f)\n", hit.FilePath, hit.StartLine, hit.EndLine, hit.Score)
	}

	for _, f := range e.TaintedPaths(5) {
		fmt.Printf("tainted path: %s -> %s (%d hops)\n", f.Source.Name, f.Sink.Name, f.HopCount)
	}
}
