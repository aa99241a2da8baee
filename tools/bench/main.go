// Command bench load-tests the public forum pages with concurrent readers.
//
//	go run ./tools/bench -base http://localhost:8080 -c 20 -n 50 -rooms 1,2,3
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// defaultEndpoints pages every worker cycles through
var defaultEndpoints = []string{"/", "/topics", "/activity", "/health"}

type sample struct {
	Path    string
	Status  int
	Latency time.Duration
	Err     error
}

// Stats collected samples, safe for concurrent Add
type Stats struct {
	mu      sync.Mutex
	samples []sample
}

func (s *Stats) Add(smp sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, smp)
}

// Summary aggregate view over the samples
type Summary struct {
	Total      int
	Successful int
	Failed     int
	Mean       time.Duration
	P50        time.Duration
	P95        time.Duration
	Max        time.Duration
}

func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Total: len(s.samples)}
	latencies := make([]time.Duration, 0, len(s.samples))
	var total time.Duration
	for _, smp := range s.samples {
		if smp.Err != nil || smp.Status != http.StatusOK {
			sum.Failed++
			continue
		}
		sum.Successful++
		latencies = append(latencies, smp.Latency)
		total += smp.Latency
	}
	if len(latencies) == 0 {
		return sum
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	sum.Mean = total / time.Duration(len(latencies))
	sum.P50 = percentile(latencies, 50)
	sum.P95 = percentile(latencies, 95)
	sum.Max = latencies[len(latencies)-1]
	return sum
}

// percentile of sorted, nearest rank
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := (len(sorted)*p + 99) / 100
	if idx < 1 {
		idx = 1
	}
	return sorted[idx-1]
}

// SaveCSV writes one line per sample
func (s *Stats) SaveCSV(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"path", "status", "latency_ms", "error"})
	for _, smp := range s.samples {
		errText := ""
		if smp.Err != nil {
			errText = smp.Err.Error()
		}
		_ = w.Write([]string{
			smp.Path,
			strconv.Itoa(smp.Status),
			strconv.FormatFloat(float64(smp.Latency)/float64(time.Millisecond), 'f', 3, 64),
			errText,
		})
	}
	w.Flush()
	return w.Error()
}

func hit(ctx context.Context, client *http.Client, base, path string) sample {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return sample{Path: path, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return sample{Path: path, Err: err, Latency: time.Since(start)}
	}
	resp.Body.Close()
	return sample{Path: path, Status: resp.StatusCode, Latency: time.Since(start)}
}

// run starts concurrency workers, each issuing perWorker requests
func run(ctx context.Context, base string, endpoints []string, concurrency, perWorker int) *Stats {
	stats := &Stats{}
	client := &http.Client{Timeout: 8 * time.Second}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if ctx.Err() != nil {
					return
				}
				stats.Add(hit(ctx, client, base, endpoints[(id+j)%len(endpoints)]))
			}
		}(i)
	}
	wg.Wait()
	return stats
}

// endpointsFor adds one room page per id in the comma separated list
func endpointsFor(rooms string) []string {
	endpoints := append([]string(nil), defaultEndpoints...)
	for _, id := range strings.Split(rooms, ",") {
		id = strings.TrimSpace(id)
		if _, err := strconv.ParseUint(id, 10, 0); err == nil {
			endpoints = append(endpoints, "/room/"+id)
		}
	}
	return endpoints
}

func main() {
	base := flag.String("base", "http://localhost:8080", "forum base url")
	concurrency := flag.Int("c", 5, "concurrent workers")
	perWorker := flag.Int("n", 10, "requests per worker")
	rooms := flag.String("rooms", "", "comma separated room ids to include")
	out := flag.String("csv", "", "write every sample to this file")
	flag.Parse()

	endpoints := endpointsFor(*rooms)
	fmt.Println("=== forum read benchmark ===")
	fmt.Printf("target: %s workers: %d requests/worker: %d\n", *base, *concurrency, *perWorker)
	fmt.Printf("endpoints: %s\n", strings.Join(endpoints, " "))

	start := time.Now()
	stats := run(context.Background(), *base, endpoints, *concurrency, *perWorker)
	took := time.Since(start)

	sum := stats.Summary()
	fmt.Printf("\ntook: %v\n", took)
	fmt.Printf("requests: %d ok: %d failed: %d\n", sum.Total, sum.Successful, sum.Failed)
	fmt.Printf("latency mean: %v p50: %v p95: %v max: %v\n", sum.Mean, sum.P50, sum.P95, sum.Max)
	if took > 0 {
		fmt.Printf("throughput: %.2f req/s\n", float64(sum.Successful)/took.Seconds())
	}

	if *out != "" {
		if err := stats.SaveCSV(*out); err != nil {
			fmt.Println("save samples failed:", err)
			os.Exit(1)
		}
		fmt.Println("samples written to", *out)
	}
}
