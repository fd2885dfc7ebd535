// Command validate-roles checks role matrix files before they ship.
package main

import (
	"fmt"
	"os"

	"github.com/blockedby/dosimetria-portal/internal/access"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("No files to check.")
		os.Exit(0)
	}

	failed := false
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ Failed to read %s: %v\n", path, err)
			failed = true
			continue
		}

		m, err := access.Parse(data)
		if err == nil {
			err = m.Validate()
		}
		if err != nil {
			fmt.Printf("❌ Invalid role matrix in %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✅ %s is valid (%d roles)\n", path, len(m.Roles))
	}

	if failed {
		os.Exit(1)
	}
}
