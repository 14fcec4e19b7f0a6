package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/agentmesh/backend/pkg/sdk"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("meshctl v%s\n", version)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	}

	engine, err := sdk.Load(os.Getenv("MESH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "meshctl: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		out    any
		runErr error
	)
	switch os.Args[1] {
	case "experts":
		out, runErr = engine.Intel.Experts(ctx, arg(2, ""), argInt(3, 10))
	case "trustpath":
		out, runErr = engine.Intel.TrustPath(ctx, arg(2, ""), arg(3, ""), argInt(4, 5))
	case "related":
		out, runErr = engine.Intel.RelatedCommunities(ctx, arg(2, ""), argInt(3, 10))
	case "trending":
		out, runErr = engine.Intel.TrendingCommunities(ctx, argInt(2, 168), argInt(3, 10))
	case "communities":
		out, runErr = engine.Intel.CommunityList(ctx)
	case "health":
		out, runErr = engine.Intel.CommunityHealth(ctx, arg(2, ""))
	case "score":
		out, runErr = engine.Reputation.ComputeScore(ctx, arg(2, ""), true, nil)
	case "pagerank":
		out, runErr = engine.Reputation.PageRank(ctx, true)
	case "resolve":
		if engine.Names == nil {
			runErr = fmt.Errorf("no registry_address configured")
			break
		}
		out, runErr = engine.Names.ResolveNameOrAddress(ctx, arg(2, ""))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "meshctl: %v\n", runErr)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "meshctl: %v\n", err)
		os.Exit(1)
	}
}

func arg(i int, fallback string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return fallback
}

func argInt(i int, fallback int) int {
	if len(os.Args) > i {
		if n, err := strconv.Atoi(os.Args[i]); err == nil {
			return n
		}
	}
	return fallback
}

func printUsage() {
	fmt.Println(`agentmesh intelligence CLI v` + version + `

Usage: meshctl <command> [args]

Commands:
  experts <community> [limit]        Top authors of a community
  trustpath <from> <to> [depth]      Shortest attestation chain
  related <community> [limit]        Communities with shared authors
  trending [hours] [limit]           Communities by posting velocity
  communities                        Known community slugs
  health <community>                 Activity summary for a community
  score <agent>                      Composed reputation score
  pagerank                           Trust-graph PageRank listing
  resolve <name-or-address>          Canonical address for a basename
  version                            Print version

Configuration is read from the YAML file named by MESH_CONFIG (plus
environment overrides); see config defaults for the knobs.`)
}
