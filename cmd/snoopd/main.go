package main

import (
	"flag"
	"log"
	"os"
	"os/signal"

	igmpsnoop "github.com/dropbox/go-igmpsnoop"
	"golang.org/x/sys/unix"
)

func main() {
	flag.Parse()

	agent := igmpsnoop.Agent{}
	agent.Setup(igmpsnoop.NoopSwitchDriver{})
	agent.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	for {
		sig := <-sigChan
		switch sig {
		case unix.SIGINT, unix.SIGTERM:
			log.Printf("Received %s, shutting down", sig)
			agent.Stop()
			return
		case unix.SIGHUP:
			log.Printf("Received %s, reloading and reconfiguring", sig)
			agent.Reload()
		}
	}
}
