package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/AnishMulay/crudfs/internal/config"
	fscrud "github.com/AnishMulay/crudfs/internal/file_service/crud"
	"github.com/AnishMulay/crudfs/internal/log_service/localdisc"
	oscrud "github.com/AnishMulay/crudfs/internal/object_store/crud"
	"github.com/AnishMulay/crudfs/internal/storetest"
	"github.com/AnishMulay/crudfs/internal/transport_session/tcp"
	"github.com/AnishMulay/crudfs/internal/wire_codec"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

const maxWriteSize = 1024

type opKind int

const (
	opRead opKind = iota
	opWrite
	opAppend
	opSeek
	opKindCount
)

// soakState mirrors what the remote file should contain so every read
// can be cross-checked.
type soakState struct {
	mirror   []byte
	length   int
	position int
}

func main() {
	configPath := flag.String("config", "./configs/crudfs.yaml", "path to the yaml config")
	iterations := flag.Int("iterations", 10240, "number of random operations to run")
	local := flag.Bool("local", false, "run against an in-process store instead of the configured address")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for the workload")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	address := cfg.StoreAddress
	if *local {
		server := storetest.NewServer()
		addr, err := server.Start()
		if err != nil {
			log.Fatalf("failed to start local store: %v", err)
		}
		defer server.Stop()
		address = addr
	}

	runID := uuid.New().String()
	ls := localdisc.NewLocalDiscLogService(cfg.LogDir, cfg.ClientID, cfg.LogLevel)
	session := tcp.NewTCPTransportSession(address, ls)
	store := oscrud.NewCRUDObjectStore(session, ls)
	fs := fscrud.NewCRUDFileService(store, ls)

	log.Printf("soak run %s: store=%s iterations=%d seed=%d", runID, address, *iterations, *seed)

	if err := run(fs, *iterations, *seed); err != nil {
		log.Fatalf("soak run %s failed: %v", runID, err)
	}
	log.Printf("soak run %s passed", runID)
}

func run(fs *fscrud.CRUDFileService, iterations int, seed uint64) error {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(seed))

	if err := fs.Format(ctx); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := fs.Mount(ctx); err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	fd, err := fs.Open(ctx, "soak_file.txt")
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	state := &soakState{mirror: make([]byte, wire_codec.MaxObjectSize)}

	for i := 0; i < iterations; i++ {
		kind := opWrite
		if state.length > 0 {
			kind = opKind(rng.Intn(int(opKindCount)))
		}

		var err error
		switch kind {
		case opRead:
			err = doRead(ctx, fs, fd, state, rng)
		case opWrite:
			err = doWrite(ctx, fs, fd, state, rng, false)
		case opAppend:
			err = doWrite(ctx, fs, fd, state, rng, true)
		case opSeek:
			err = doSeek(fs, fd, state, rng)
		}
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
	}

	if err := fs.Close(fd); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := fs.Unmount(ctx); err != nil {
		return fmt.Errorf("unmount: %w", err)
	}
	return nil
}

func doRead(ctx context.Context, fs *fscrud.CRUDFileService, fd int, state *soakState, rng *rand.Rand) error {
	count := rng.Intn(state.length + 1)

	data, err := fs.Read(ctx, fd, count)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	expected := count
	if state.position+count > state.length {
		expected = state.length - state.position
	}
	if len(data) != expected {
		return fmt.Errorf("read returned %d bytes, expected %d", len(data), expected)
	}
	if !bytes.Equal(data, state.mirror[state.position:state.position+expected]) {
		return fmt.Errorf("read data diverged from mirror at position %d", state.position)
	}

	state.position += expected
	return nil
}

func doWrite(ctx context.Context, fs *fscrud.CRUDFileService, fd int, state *soakState, rng *rand.Rand, toEnd bool) error {
	if toEnd {
		if err := fs.Seek(fd, uint32(state.length)); err != nil {
			return fmt.Errorf("seek to end: %w", err)
		}
		state.position = state.length
	}

	count := 1 + rng.Intn(maxWriteSize)
	if state.position+count >= wire_codec.MaxObjectSize {
		return nil // skip writes that would overflow the object
	}

	fill := byte(rng.Intn(256))
	block := bytes.Repeat([]byte{fill}, count)

	n, err := fs.Write(ctx, fd, block)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if n != count {
		return fmt.Errorf("write accepted %d bytes, expected %d", n, count)
	}

	copy(state.mirror[state.position:], block)
	state.position += count
	if state.position > state.length {
		state.length = state.position
	}
	return nil
}

func doSeek(fs *fscrud.CRUDFileService, fd int, state *soakState, rng *rand.Rand) error {
	loc := rng.Intn(state.length + 1)
	if err := fs.Seek(fd, uint32(loc)); err != nil {
		return fmt.Errorf("seek to %d: %w", loc, err)
	}
	state.position = loc
	return nil
}
