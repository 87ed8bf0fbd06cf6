// Command enginectl is a control-plane CLI for a running engine-demo
// process: it queries graph status over engineweb's REST API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	host := pflag.StringP("host", "H", "localhost", "engine-demo host to control")
	port := pflag.IntP("port", "p", 8080, "engineweb port")
	watch := pflag.BoolP("watch", "w", false, "poll status repeatedly instead of once")
	interval := pflag.DurationP("interval", "i", time.Second, "poll interval when -watch is set")
	help := pflag.BoolP("help", "h", false, "show this help message")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "enginectl - inspect a running engine-demo's graph status.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: enginectl [options]\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	url := fmt.Sprintf("http://%s:%d/api/status", *host, *port)

	if !*watch {
		if err := fetchAndPrint(url); err != nil {
			fmt.Fprintf(os.Stderr, "enginectl: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := fetchAndPrint(url); err != nil {
			fmt.Fprintf(os.Stderr, "enginectl: %v\n", err)
		}
	}
}

func fetchAndPrint(url string) error {
	resp, err := http.Get(url) //nolint:gosec // url is assembled from local CLI flags, not remote input
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var statuses []map[string]interface{}
	if err := json.Unmarshal(body, &statuses); err != nil {
		return err
	}

	for _, s := range statuses {
		fmt.Printf("%3v: %-30v %v\n", s["index"], s["type"], s["status"])
	}
	return nil
}
