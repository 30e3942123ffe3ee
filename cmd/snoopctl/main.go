package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	igmpsnoop "github.com/dropbox/go-igmpsnoop"
)

func main() {
	host := flag.String("host", "127.0.0.1", "snoopd host to query")
	port := flag.String("port", "5380", "snoopd debug API port")
	flag.Parse()

	c := igmpsnoop.NewClient(*host, *port)
	snap, err := c.GetSnapshot()
	if err != nil {
		log.Fatal("Failed to fetch snapshot:", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		log.Fatal("Failed to encode snapshot:", err)
	}
}
