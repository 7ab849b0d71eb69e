// enc cifra una URI de cluster con la clave maestra de secretbox, para pegar
// el resultado como uri_enc en el config YAML.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	sec "github.com/dropDatabas3/tenantplane/internal/security/secretbox"
)

func main() {
	_ = godotenv.Load(".env")
	if os.Getenv("SECRETBOX_MASTER_KEY") == "" {
		log.Fatal("SECRETBOX_MASTER_KEY not set")
	}

	uri := os.Getenv("CLUSTER_URI")
	if uri == "" && len(os.Args) > 1 {
		uri = os.Args[1]
	}
	if uri == "" {
		log.Fatal("usage: enc <uri>  (o env CLUSTER_URI)")
	}

	enc, err := sec.Encrypt(uri)
	if err != nil {
		log.Fatalf("encrypt: %v", err)
	}
	fmt.Println(enc)
}
