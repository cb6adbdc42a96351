// Package main implements an interactive debugging client for the engine
// exchange server. It keeps the game state the protocol makes the caller
// responsible for: the current position and the engine's opaque state.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"enginehost/internal/client/api"
	"enginehost/internal/client/display"
	"enginehost/internal/codec"
	"enginehost/internal/protocol"

	"github.com/chzyer/readline"
)

type session struct {
	client *api.Client

	// Caller-owned game state, round-tripped on every exchange.
	engineState json.RawMessage
	fen         string

	// Fixed seeds for replaying exchanges bit-exactly. Nil means the
	// server draws fresh ones.
	observeOpponentSeed *uint64
	proposeSeed         *uint64
	observeOwnSeed      *uint64

	withInfo bool
	attempts int
	started  bool
}

func main() {
	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	s := &session{
		client:   api.New(baseURL),
		attempts: api.DefaultMoveAttempts,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("engine"),
		HistoryFile:     ".engine_client_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sEngine Exchange Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, baseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			printHelp()
		case "info":
			s.cmdInfo()
		case "new":
			s.cmdNew()
		case "start":
			s.cmdExchange(codec.NullMove)
		case "move":
			if len(args) != 1 {
				fail("usage: move <uci>")
				continue
			}
			s.cmdExchange(args[0])
		case "board":
			s.cmdBoard()
		case "seeds":
			s.cmdSeeds(args)
		case "status":
			s.withInfo = !s.withInfo
			fmt.Printf("status info requests: %v\n", s.withInfo)
		case "verbose":
			s.client.SetVerbose(!s.client.Verbose)
			fmt.Printf("verbose: %v\n", s.client.Verbose)
		case "exit", "quit":
			return
		default:
			fail(fmt.Sprintf("unknown command %q, try 'help'", cmd))
		}
	}
}

func printHelp() {
	fmt.Print(`Commands:
  info            show engine metadata
  new             start a new game (fetches the engine's initial state)
  start           let the engine make the first move (sends the null move)
  move <uci>      play your move, e.g. move e2e4
  board           show the current position
  seeds <a b c>   fix the three exchange seeds ('seeds off' to clear)
  status          toggle requesting status info
  verbose         toggle API traffic dump
  exit            leave
`)
}

func fail(msg string) {
	fmt.Printf("%s%s%s\n", display.Red, msg, display.Reset)
}

func (s *session) cmdInfo() {
	info, err := s.client.Info()
	if err != nil {
		fail(err.Error())
		return
	}
	fmt.Printf("%s%s%s: %s\n", display.Green, info.ID, display.Reset, info.Description)
	fmt.Printf("initial state: %s\n", string(info.InitialState))
}

func (s *session) cmdNew() {
	info, err := s.client.Info()
	if err != nil {
		fail(err.Error())
		return
	}
	s.engineState = info.InitialState
	s.fen = codec.StartingFEN
	s.started = true
	fmt.Printf("new game against %s%s%s\n", display.Green, info.ID, display.Reset)
	display.RenderFEN(s.fen)
}

func (s *session) cmdBoard() {
	if !s.started {
		fail("no game in progress, use 'new'")
		return
	}
	display.RenderFEN(s.fen)
}

func (s *session) cmdExchange(move string) {
	if !s.started {
		fail("no game in progress, use 'new'")
		return
	}

	req := &protocol.AnyMoveRequest{
		Move:                move,
		GameBefore:          s.fen,
		EngineState:         s.engineState,
		ObserveOpponentSeed: s.observeOpponentSeed,
		ProposeSeed:         s.proposeSeed,
		ObserveOwnSeed:      s.observeOwnSeed,
		WithStatusInfo:      s.withInfo,
	}

	resp, err := s.client.MoveWithRetry(req, s.attempts)
	if err != nil {
		fail(err.Error())
		return
	}

	s.engineState = resp.EngineState
	s.fen = resp.GameAfter

	fmt.Printf("engine plays %s%s%s\n", display.Green, resp.Move, display.Reset)
	if resp.ObserveOpponentSeedUsed != nil {
		fmt.Printf("seeds used: observe=%d propose=%d observe-own=%d\n",
			*resp.ObserveOpponentSeedUsed, resp.ProposeSeedUsed, resp.ObserveOwnSeedUsed)
	} else {
		fmt.Printf("seeds used: propose=%d observe-own=%d (nothing to observe)\n",
			resp.ProposeSeedUsed, resp.ObserveOwnSeedUsed)
	}
	if len(resp.StatusInfo) > 0 && string(resp.StatusInfo) != "null" {
		fmt.Printf("status info: %s\n", string(resp.StatusInfo))
	}
	display.RenderFEN(s.fen)
}

func (s *session) cmdSeeds(args []string) {
	if len(args) == 1 && args[0] == "off" {
		s.observeOpponentSeed, s.proposeSeed, s.observeOwnSeed = nil, nil, nil
		fmt.Println("seeds cleared, server will draw fresh ones")
		return
	}
	if len(args) != 3 {
		fail("usage: seeds <observe> <propose> <observe-own> | seeds off")
		return
	}
	vals := make([]uint64, 3)
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			fail(fmt.Sprintf("bad seed %q: %v", a, err))
			return
		}
		vals[i] = v
	}
	s.observeOpponentSeed, s.proposeSeed, s.observeOwnSeed = &vals[0], &vals[1], &vals[2]
	fmt.Printf("seeds fixed: %d %d %d\n", vals[0], vals[1], vals[2])
}
