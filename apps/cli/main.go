package main

import (
	"fmt"
	"os"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/apps/cli/root"
)

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
