package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fault defines specific failure behavior for matching paths.
type Fault struct {
	FailOpen   bool
	FailRead   bool
	FailReadAt bool
	FailWrite  bool
	FailFlush  bool
	FailSync   bool
	FailClose  bool
	FailStat   bool
	FailExists bool
	FailList   bool
	ShortRead  int // If >0, sequential reads return at most this many bytes with no error.
	ShortWrite int // If >0, writes report this many bytes written with no error.
	Err        error
}

// FaultyClient is a Client wrapper that can inject errors.
// It also counts operations per primitive, which tests use to assert that
// an operation was (or was not) issued.
type FaultyClient struct {
	Client Client

	mu    sync.Mutex
	rules []faultRule
	calls map[string]int

	// Err is the default injected error when a rule does not set its own.
	Err error
}

type faultRule struct {
	pattern string
	fault   Fault
}

// NewFaultyClient creates a new FaultyClient wrapping the provided Client.
func NewFaultyClient(client Client) *FaultyClient {
	return &FaultyClient{
		Client: client,
		calls:  make(map[string]int),
		Err:    fmt.Errorf("injected fault error"),
	}
}

// AddRule adds a fault injection rule for a specific path pattern. Rules are
// applied in insertion order; when several patterns match a path, the most
// recently added one wins.
func (f *FaultyClient) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, faultRule{pattern: pattern, fault: fault})
}

// Calls returns how many times the named primitive has been invoked.
func (f *FaultyClient) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyClient) fault(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()
	var fault Fault
	// Most recently added matching rule wins.
	for _, rule := range f.rules {
		if strings.Contains(name, rule.pattern) {
			fault = rule.fault
		}
	}
	if fault.Err == nil {
		fault.Err = f.Err
	}
	return fault
}

func (f *FaultyClient) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *FaultyClient) Open(ctx context.Context, name string, mode OpenMode) (File, error) {
	f.count("open")
	fault := f.fault(name)
	if fault.FailOpen {
		return nil, fault.Err
	}
	file, err := f.Client.Open(ctx, name, mode)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyClient) Stat(ctx context.Context, name string) (FileInfo, error) {
	f.count("stat")
	if fault := f.fault(name); fault.FailStat {
		return FileInfo{}, fault.Err
	}
	return f.Client.Stat(ctx, name)
}

func (f *FaultyClient) Exists(ctx context.Context, name string) (bool, error) {
	f.count("exists")
	if fault := f.fault(name); fault.FailExists {
		return false, fault.Err
	}
	return f.Client.Exists(ctx, name)
}

func (f *FaultyClient) List(ctx context.Context, dir string) ([]FileInfo, error) {
	f.count("list")
	if fault := f.fault(dir); fault.FailList {
		return nil, fault.Err
	}
	return f.Client.List(ctx, dir)
}

func (f *FaultyClient) Delete(ctx context.Context, name string) error {
	f.count("delete")
	return f.Client.Delete(ctx, name)
}

func (f *FaultyClient) Rename(ctx context.Context, src, dst string) error {
	f.count("rename")
	return f.Client.Rename(ctx, src, dst)
}

func (f *FaultyClient) Mkdir(ctx context.Context, name string) error {
	f.count("mkdir")
	return f.Client.Mkdir(ctx, name)
}

type faultyFile struct {
	File
	fault Fault
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if ff.fault.FailRead {
		return 0, ff.fault.Err
	}
	if ff.fault.ShortRead > 0 && len(p) > ff.fault.ShortRead {
		p = p[:ff.fault.ShortRead]
	}
	return ff.File.Read(p)
}

func (ff *faultyFile) ReadAt(p []byte, off int64) (int, error) {
	if ff.fault.FailReadAt {
		return 0, ff.fault.Err
	}
	return ff.File.ReadAt(p, off)
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailWrite {
		return 0, ff.fault.Err
	}
	if ff.fault.ShortWrite > 0 && len(p) > ff.fault.ShortWrite {
		n, err := ff.File.Write(p[:ff.fault.ShortWrite])
		if err != nil {
			return n, err
		}
		return n, nil
	}
	return ff.File.Write(p)
}

func (ff *faultyFile) Flush() error {
	if ff.fault.FailFlush {
		return ff.fault.Err
	}
	return ff.File.Flush()
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailSync {
		return ff.fault.Err
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailClose {
		return ff.fault.Err
	}
	return ff.File.Close()
}
