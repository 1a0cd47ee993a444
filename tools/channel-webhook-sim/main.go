// channel-webhook-sim stands in for the push gateway, the WhatsApp relay and
// the SMS provider during local development. It logs every delivery and can
// simulate provider failures: any recipient ending in FAIL_SUFFIX gets a 502,
// which exercises the notification cascade's fallback path.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		addr       = flag.String("addr", getenv("ADDR", ":9801"), "listen address")
		failSuffix = flag.String("fail-suffix", getenv("FAIL_SUFFIX", ""), "recipients ending in this suffix get a 502")
	)
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/push", channel("push", "patient_id", *failSuffix))
	mux.HandleFunc("/whatsapp", channel("whatsapp", "phone", *failSuffix))
	mux.HandleFunc("/sms", channel("sms", "to", *failSuffix))

	fmt.Printf("channel-webhook-sim listening on %s (fail suffix %q)\n", *addr, *failSuffix)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func channel(name, recipientField, failSuffix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		recipient := payload[recipientField]
		if failSuffix != "" && strings.HasSuffix(recipient, failSuffix) {
			fmt.Printf("[%s] %s -> simulated provider failure\n", name, recipient)
			http.Error(w, "simulated provider failure", http.StatusBadGateway)
			return
		}
		fmt.Printf("[%s] %s: %s\n", name, recipient, firstLine(payload["body"]))
		w.WriteHeader(http.StatusOK)
	}
}

func firstLine(body string) string {
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		return body[:i]
	}
	return body
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
