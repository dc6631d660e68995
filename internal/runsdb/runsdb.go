// Package runsdb records symbol-recovery run metadata to a ClickHouse
// database. The database is optional: with no reachable server every
// recorder method degrades to a no-op, so callers never need to branch on
// whether run logging is configured.
package runsdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/oklog/ulid/v2"
)

const databaseName = "symtrack" // SQL name of the database

// RunMessage is the information stored in the runs table, one row per
// timing-recovery run.
type RunMessage struct {
	ID               string // ULID for this run
	Hostname         string
	Version          string
	InputFile        string
	OutputFile       string
	SamplesPerSymbol float64
	Alpha            float64
	Beta             float64
	TED              string
	Interpolator     string
	InputSamples     int
	SymbolsEmitted   int
	Locked           bool
	FinalMeanErr     float64
	Start            time.Time
	End              time.Time
}

// NewRunID returns a fresh ULID string for labeling one recovery run.
func NewRunID() string {
	return ulid.Make().String()
}

// Connection wraps one ClickHouse connection plus the channel the recorder
// goroutine drains.
type Connection struct {
	conn   clickhouse.Conn
	err    error
	runmsg chan *RunMessage
	sync.WaitGroup
}

// IsConnected reports whether the connection is usable.
func (db *Connection) IsConnected() bool {
	return db != nil && db.conn != nil && db.err == nil
}

// Start opens the connection (address and credentials from the environment
// variables SYMTRACK_DB_ADDR, SYMTRACK_DB_USER, SYMTRACK_DB_PASSWORD) and
// launches the recorder goroutine. A failed connection is not an error:
// the returned Connection simply records nothing.
func Start(abort <-chan struct{}) *Connection {
	db := connect()
	go db.handleConnection(abort)
	return db
}

func connect() *Connection {
	db := &Connection{runmsg: make(chan *RunMessage)}
	addr := os.Getenv("SYMTRACK_DB_ADDR")
	if addr == "" {
		addr = "localhost:9000"
	}
	opt := clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: databaseName,
			Username: os.Getenv("SYMTRACK_DB_USER"),
			Password: os.Getenv("SYMTRACK_DB_PASSWORD"),
		},
	}
	conn, err := clickhouse.Open(&opt)
	if err != nil {
		db.err = err
		return db
	}
	if err = conn.Ping(context.Background()); err != nil {
		if exception, ok := err.(*clickhouse.Exception); ok {
			fmt.Printf("ClickHouse exception [%d] %s\n", exception.Code, exception.Message)
		}
		db.err = err
		return db
	}
	db.conn = conn
	db.Add(1)
	return db
}

func (db *Connection) handleConnection(abort <-chan struct{}) {
	if !db.IsConnected() {
		return
	}
	defer db.Done()
	for {
		select {
		case <-abort:
			db.conn.Close()
			return
		case msg := <-db.runmsg:
			db.insertRun(msg)
		}
	}
}

// RecordRun stores one run row in the database (if it's open). Blocks until
// the recorder goroutine accepts the message, so a run is durably queued
// before the caller exits.
func (db *Connection) RecordRun(msg *RunMessage) {
	if !db.IsConnected() || msg == nil {
		return
	}
	db.runmsg <- msg
}

func (db *Connection) insertRun(m *RunMessage) {
	const nowait = false
	ctx := context.Background()
	formattedStart := m.Start.Format("2006-01-02 15:04:05.000000")
	formattedEnd := m.End.Format("2006-01-02 15:04:05.000000")
	if err := db.conn.AsyncInsert(ctx,
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, nowait,
		m.ID, m.Hostname, m.Version, m.InputFile, m.OutputFile,
		m.SamplesPerSymbol, m.Alpha, m.Beta, m.TED, m.Interpolator,
		m.InputSamples, m.SymbolsEmitted, m.Locked, m.FinalMeanErr,
		formattedStart, formattedEnd,
	); err != nil {
		fmt.Println("Error raised on AsyncInsert into runs:", err)
		db.err = err
	}
}
