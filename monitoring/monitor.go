// Package monitoring turns a run into a web server that reports the state of
// its ranks while they work.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/oceandist/idgen"
	"github.com/sarchlab/oceandist/monitoring/web"
	"github.com/sarchlab/oceandist/tracing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A World is a group of ranks that the monitor observes.
type World interface {
	Size() int
	PendingMessages() int
	Aborted() (bool, int)
	Abort(code int)
}

// Monitor can turn a run into a server and allows external monitoring and
// aborting of the run.
type Monitor struct {
	world       World
	traffic     *tracing.TrafficCounter
	portNumber  int
	openBrowser bool
	ids         idgen.Generator

	ranksLock sync.Mutex
	ranks     map[int]*RankSnapshot

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		ids:   idgen.NewParallel(),
		ranks: make(map[int]*RankSnapshot),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the status page in a browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterWorld registers the world that runs the ranks.
func (m *Monitor) RegisterWorld(w World) {
	m.world = w
}

// RegisterTraffic registers the counter that reports the traffic of the
// ranks. The counter must also be attached to the world as a hook.
func (m *Monitor) RegisterTraffic(c *tracing.TrafficCounter) {
	m.traffic = c
}

// RegisterRank registers a rank and returns the snapshot that the rank
// publishes its state to.
func (m *Monitor) RegisterRank(rank int) *RankSnapshot {
	m.ranksLock.Lock()
	defer m.ranksLock.Unlock()

	snapshot := &RankSnapshot{}
	m.ranks[rank] = snapshot

	return snapshot
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.ids.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/world", m.reportWorld)
	r.HandleFunc("/api/abort", m.abort).Methods(http.MethodPost)
	r.HandleFunc("/api/list_ranks", m.listRanks)
	r.HandleFunc("/api/rank/{rank}", m.listRankDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/traffic", m.reportTotalTraffic)
	r.HandleFunc("/api/traffic/{rank}", m.reportTraffic)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.Assets()))

	return r
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintf(os.Stderr, "Monitoring run with %s\n", url)

	r := m.router()
	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return port
}

type worldRsp struct {
	Size            int  `json:"size"`
	PendingMessages int  `json:"pending_messages"`
	Aborted         bool `json:"aborted"`
	AbortCode       int  `json:"abort_code"`
}

func (m *Monitor) reportWorld(w http.ResponseWriter, _ *http.Request) {
	if m.world == nil {
		http.Error(w, "No world registered", http.StatusNotFound)
		return
	}

	aborted, code := m.world.Aborted()
	rsp := worldRsp{
		Size:            m.world.Size(),
		PendingMessages: m.world.PendingMessages(),
		Aborted:         aborted,
		AbortCode:       code,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) abort(w http.ResponseWriter, r *http.Request) {
	if m.world == nil {
		http.Error(w, "No world registered", http.StatusNotFound)
		return
	}

	code := 1
	if s := r.URL.Query().Get("code"); s != "" {
		c, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error: %s", err), http.StatusBadRequest)
			return
		}

		code = c
	}

	m.world.Abort(code)
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) listRanks(w http.ResponseWriter, _ *http.Request) {
	m.ranksLock.Lock()
	ranks := make([]int, 0, len(m.ranks))
	for r := range m.ranks {
		ranks = append(ranks, r)
	}
	m.ranksLock.Unlock()

	sort.Ints(ranks)

	writeJSON(w, ranks)
}

func (m *Monitor) listRankDetails(w http.ResponseWriter, r *http.Request) {
	state := m.findRankOr404(w, mux.Vars(r)["rank"])
	if state == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	Rank      string `json:"rank,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %s", err), http.StatusBadRequest)
		return
	}

	state := m.findRankOr404(w, req.Rank)
	if state == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %s", err), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findRankOr404(w http.ResponseWriter, name string) any {
	rank, err := strconv.Atoi(name)
	if err == nil {
		m.ranksLock.Lock()
		snapshot, found := m.ranks[rank]
		m.ranksLock.Unlock()

		if found {
			if state := snapshot.Load(); state != nil {
				return state
			}
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err = w.Write([]byte("Rank not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) reportTotalTraffic(w http.ResponseWriter, _ *http.Request) {
	if m.traffic == nil {
		http.Error(w, "Traffic is not counted", http.StatusNotFound)
		return
	}

	writeJSON(w, m.traffic.Ranks())
}

func (m *Monitor) reportTraffic(w http.ResponseWriter, r *http.Request) {
	if m.traffic == nil {
		http.Error(w, "Traffic is not counted", http.StatusNotFound)
		return
	}

	rank, err := strconv.Atoi(mux.Vars(r)["rank"])
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %s", err), http.StatusBadRequest)
		return
	}

	t, _ := m.traffic.Rank(rank)

	writeJSON(w, t)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %s", err), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
