// docseal-keygen bootstraps an owner identity: it generates (or imports) a
// bip39 mnemonic, derives the X25519 key pair and writes the key-pair file
// the daemon loads at startup. The mnemonic is printed once; whoever holds
// it can regenerate the identity.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"docseal/go-backend/internal/identity"
	"docseal/go-backend/internal/keyexchange"
)

func main() {
	outPath := flag.String("out", "data/identity.json", "Where to write the key-pair file")
	importMnemonic := flag.String("import", "", "Recover an identity from an existing mnemonic instead of generating one")
	force := flag.Bool("force", false, "Overwrite an existing key-pair file")
	flag.Parse()

	if !*force {
		if _, err := os.Stat(*outPath); err == nil {
			log.Fatalf("refusing to overwrite %s (use -force)", *outPath)
		}
	}

	password := strings.TrimSpace(os.Getenv("DOCSEAL_SEED_PASSWORD"))
	if password == "" {
		log.Fatal("DOCSEAL_SEED_PASSWORD must be set; it protects the seed in memory during generation")
	}
	passphrase := os.Getenv("DOCSEAL_PASSPHRASE")

	seeds := identity.NewSeedManager()
	var (
		mnemonic string
		pair     keyexchange.KeyPair
		err      error
	)
	if *importMnemonic != "" {
		mnemonic, pair, err = seeds.Import(*importMnemonic, password)
	} else {
		mnemonic, pair, err = seeds.Create(password)
	}
	if err != nil {
		log.Fatalf("identity generation failed: %v", err)
	}

	if err := identity.SaveKeyPairFile(*outPath, passphrase, pair); err != nil {
		log.Fatalf("writing key-pair file failed: %v", err)
	}

	identityID, err := identity.BuildIdentityID(pair.PublicKey)
	if err != nil {
		log.Fatalf("building identity id failed: %v", err)
	}

	fmt.Printf("identity id:  %s\n", identityID)
	fmt.Printf("public key:   %s\n", keyexchange.PublicKeyToHex(pair.PublicKey))
	fmt.Printf("key file:     %s\n", *outPath)
	if *importMnemonic == "" {
		fmt.Println()
		fmt.Println("Recovery mnemonic (write it down, it is shown exactly once):")
		fmt.Println(mnemonic)
	}
}
