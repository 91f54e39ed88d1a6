// Package main is a development utility that generates a JWT signing secret
// suitable for VTR_JWT_SECRET. It prints the secret and ready-to-paste export
// and compose lines so developers can seed a local environment without
// inventing a weak secret by hand. Generate a fresh secret per environment —
// never share one between staging and production.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
)

func main() {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		log.Fatal(err)
	}

	secret := hex.EncodeToString(randomBytes)

	fmt.Println("==========================================================")
	fmt.Println("JWT Secret Generated")
	fmt.Println("==========================================================")
	fmt.Printf("\nSecret: %s\n", secret)
	fmt.Println("\nShell:")
	fmt.Printf("  export VTR_JWT_SECRET=%s\n", secret)
	fmt.Println("\ndocker-compose:")
	fmt.Printf("  VTR_JWT_SECRET: %q\n", secret)
	fmt.Println("==========================================================")
}
