// Command mkuser produces a credentials entry for the gallery_users
// configuration value: it prompts for a password without echoing and
// prints "username:bcryptHash".
package main

import (
	"fmt"
	"log"
	"os"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <username>", os.Args[0])
	}
	username := os.Args[1]

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	repeat, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}

	if string(password) != string(repeat) {
		log.Fatal("passwords do not match")
	}
	if len(password) == 0 {
		log.Fatal("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	fmt.Printf("%s:%s\n", username, hash)
}
