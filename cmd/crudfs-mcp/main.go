package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/AnishMulay/crudfs/internal/config"
	fscrud "github.com/AnishMulay/crudfs/internal/file_service/crud"
	"github.com/AnishMulay/crudfs/internal/log_service/localdisc"
	oscrud "github.com/AnishMulay/crudfs/internal/object_store/crud"
	"github.com/AnishMulay/crudfs/internal/transport_session/tcp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const readChunkSize = 4096

// registry bundles the file service behind the MCP tools.
type registry struct {
	fs *fscrud.CRUDFileService
}

func addTools(s *server.MCPServer, reg *registry) {
	formatTool := mcp.NewTool("format",
		mcp.WithDescription("Format the object store, wiping all files"),
	)
	s.AddTool(formatTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := reg.fs.Format(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Format failed: %v", err)), nil
		}
		return mcp.NewToolResultText("Store formatted"), nil
	})

	mountTool := mcp.NewTool("mount",
		mcp.WithDescription("Load the persisted file table from the store"),
	)
	s.AddTool(mountTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := reg.fs.Mount(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Mount failed: %v", err)), nil
		}
		return mcp.NewToolResultText("File table mounted"), nil
	})

	unmountTool := mcp.NewTool("unmount",
		mcp.WithDescription("Persist the file table and close the store session"),
	)
	s.AddTool(unmountTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := reg.fs.Unmount(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Unmount failed: %v", err)), nil
		}
		return mcp.NewToolResultText("File table persisted, session closed"), nil
	})

	storeFileTool := mcp.NewTool("store_file",
		mcp.WithDescription("Write content to a file in the store"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Name of the file"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Content to write"),
		),
	)
	s.AddTool(storeFileTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleStoreFile(ctx, request, reg)
	})

	readFileTool := mcp.NewTool("read_file",
		mcp.WithDescription("Read the full content of a file from the store"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Name of the file"),
		),
	)
	s.AddTool(readFileTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleReadFile(ctx, request, reg)
	})

	listFilesTool := mcp.NewTool("list_files",
		mcp.WithDescription("List all entries in the file table"),
	)
	s.AddTool(listFilesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries := reg.fs.Entries()
		if len(entries) == 0 {
			return mcp.NewToolResultText("File table is empty"), nil
		}

		var b strings.Builder
		b.WriteString("Files:\n")
		for _, entry := range entries {
			state := "closed"
			if entry.Open {
				state = "open"
			}
			fmt.Fprintf(&b, "- %s (fd=%d, length=%d, %s)\n", entry.Path, entry.Handle, entry.Length, state)
		}
		return mcp.NewToolResultText(b.String()), nil
	})
}

func handleStoreFile(ctx context.Context, request mcp.CallToolRequest, reg *registry) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fd, err := reg.fs.Open(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open %s: %v", path, err)), nil
	}

	if _, err := reg.fs.Write(ctx, fd, []byte(content)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to write %s: %v", path, err)), nil
	}
	if err := reg.fs.Close(fd); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to close %s: %v", path, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Stored %d bytes in %s", len(content), path)), nil
}

func handleReadFile(ctx context.Context, request mcp.CallToolRequest, reg *registry) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fd, err := reg.fs.Open(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open %s: %v", path, err)), nil
	}

	var content []byte
	for {
		chunk, err := reg.fs.Read(ctx, fd, readChunkSize)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read %s: %v", path, err)), nil
		}
		if len(chunk) == 0 {
			break
		}
		content = append(content, chunk...)
	}

	if err := reg.fs.Close(fd); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to close %s: %v", path, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("File content: %s", content)), nil
}

func main() {
	configPath := flag.String("config", "./configs/crudfs.yaml", "path to the yaml config")
	mount := flag.Bool("mount", true, "mount the persisted file table on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ls := localdisc.NewLocalDiscLogService(cfg.LogDir, cfg.ClientID, cfg.LogLevel)
	session := tcp.NewTCPTransportSession(cfg.StoreAddress, ls)
	store := oscrud.NewCRUDObjectStore(session, ls)
	fs := fscrud.NewCRUDFileService(store, ls)

	if *mount {
		if err := fs.Mount(context.Background()); err != nil {
			log.Printf("mount failed (store may need a format): %v", err)
		}
	}

	s := server.NewMCPServer(
		"crudfs",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	addTools(s, &registry{fs: fs})

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("Server error: %v\n", err)
	}
}
