// Command lookup resolves a single barcode from the command line, for
// poking at the provider chain without standing up the full server.
//
//	lookup -barcode 012345678905
//	lookup -barcode 012345678905 -proxy http://localhost:9090
//
// Provider credentials come from the environment (STOCKROOM_GOUPC_API_KEY,
// STOCKROOM_UPCITEMDB_API_KEY). With -proxy, provider requests are routed
// through {proxy}/{provider} instead of the provider hosts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/stockroom/backend/internal/domain"
	"github.com/stockroom/backend/internal/infrastructure/goupc"
	"github.com/stockroom/backend/internal/infrastructure/openfoodfacts"
	"github.com/stockroom/backend/internal/infrastructure/upcitemdb"
	"github.com/stockroom/backend/internal/usecase"
)

func main() {
	barcode := flag.String("barcode", "", "barcode to resolve (required)")
	proxy := flag.String("proxy", "", "optional proxy base URL; provider requests go to {proxy}/{provider}")
	timeout := flag.Duration("timeout", 10*time.Second, "per-provider timeout")
	flag.Parse()

	if *barcode == "" {
		flag.Usage()
		os.Exit(2)
	}

	goUPCBase := "https://go-upc.com"
	upcItemDBBase := "https://api.upcitemdb.com"
	offBase := "https://world.openfoodfacts.org"
	if *proxy != "" {
		base := strings.TrimRight(*proxy, "/")
		goUPCBase = base + "/goupc"
		upcItemDBBase = base + "/upcitemdb"
		offBase = base + "/openfoodfacts"
	}

	providers := []domain.Provider{
		goupc.NewClient(os.Getenv("STOCKROOM_GOUPC_API_KEY"), goUPCBase),
		upcitemdb.NewClient(os.Getenv("STOCKROOM_UPCITEMDB_API_KEY"), upcItemDBBase),
		openfoodfacts.NewClient(offBase),
	}

	resolver := usecase.NewResolver(providers, *timeout)
	service := usecase.NewLookupService(resolver, nil, 0)

	record, err := service.Lookup(context.Background(), *barcode)
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))
}
