package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func main() {
	bin, err := exec.LookPath("plumbline")
	if err != nil {
		fmt.Fprintln(os.Stderr, "plb: plumbline not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"plumbline"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "plb: %v\n", err)
		os.Exit(1)
	}
}
