// siftplan - inspect and maintain a sift plan store
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sift-lang/sift/config"
	"github.com/sift-lang/sift/plan"
)

func main() {
	storePath := flag.String("store", "", "Plan store path (defaults to the [cache] setting in sift.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: siftplan [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Inspect and maintain a sift plan store.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list                  List stored plans\n")
		fmt.Fprintf(os.Stderr, "  show <hash>           Disassemble a stored plan\n")
		fmt.Fprintf(os.Stderr, "  delete <hash>         Remove a stored plan\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	store, err := openStore(*storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch args[0] {
	case "list":
		err = runList(store)
	case "show":
		if len(args) != 2 {
			fmt.Fprintf(os.Stderr, "Usage: siftplan show <hash>\n")
			os.Exit(2)
		}
		err = runShow(store, args[1])
	case "delete":
		if len(args) != 2 {
			fmt.Fprintf(os.Stderr, "Usage: siftplan delete <hash>\n")
			os.Exit(2)
		}
		err = store.Delete(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore resolves the store path from the flag or the nearest sift.toml.
func openStore(path string) (*plan.Store, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg, err := config.FindAndLoad(cwd)
		if err != nil {
			return nil, err
		}
		if cfg == nil || cfg.PlanStorePath() == "" {
			return nil, fmt.Errorf("no plan store configured; pass -store or set [cache] plan-store in %s", config.FileName)
		}
		path = cfg.PlanStorePath()
	}
	return plan.OpenStore(path)
}

func runList(store *plan.Store) error {
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No plans stored.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %7d bytes  %s\n", info.Hash, info.Size, info.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runShow(store *plan.Store, hash string) error {
	p, err := store.Get(hash)
	if err != nil {
		return err
	}
	fmt.Print(plan.Disassemble(p))
	return nil
}
