package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/tonic/audio"
	"github.com/mrdg/tonic/dub"
)

type env struct {
	engine *audio.Engine
	sink   *audio.Sink
}

func (e *env) eval(input string) (dub.Node, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return nil, err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return nil, fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return nil, fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

func repl(env *env) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return err
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if result, err := env.eval(line); err != nil {
			fmt.Println(err)
		} else if result != nil {
			fmt.Println(result)
		}
	}
}

type command struct {
	name  string
	run   func(*env, []dub.Node) (dub.Node, error)
	arity int // -n means len(args) must be >= n
}

var commands = []command{
	{"play", playCommand, -1},
	{"stop", stopCommand, 1},
	{"stopall", stopAllCommand, 0},
	{"set", setCommand, 2},
	{"get", getCommand, 1},
	{"bpm", bpmCommand, 1},
	{"preset", presetCommand, 1},
	{"presets", presetsCommand, 0},
	{"params", paramsCommand, 0},
	{"fx", fxCommand, -2},
	{"chain-save", chainSaveCommand, 1},
	{"chain-load", chainLoadCommand, 1},
	{"quality", qualityCommand, 0},
	{"show", showCommand, 0},
	{"bounce", bounceCommand, -2},
}

// playCommand starts one note or a chord and returns the voice ids, which
// stop takes later.
func playCommand(env *env, args []dub.Node) (dub.Node, error) {
	notes, err := notesOf(args[0])
	if err != nil {
		return nil, err
	}
	velocity := 0.8
	if len(args) > 1 {
		if err := readArgs(args[1:], &velocity); err != nil {
			return nil, err
		}
	}
	var ids dub.Array
	for _, note := range notes {
		if id := env.engine.PlayNote(note, velocity); id > 0 {
			ids = append(ids, dub.Int(id))
		}
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	return ids, nil
}

func notesOf(arg dub.Node) ([]int, error) {
	switch v := arg.(type) {
	case dub.Int:
		return []int{int(v)}, nil
	case dub.Array:
		notes := make([]int, len(v))
		for i, item := range v {
			n, ok := item.(dub.Int)
			if !ok {
				return nil, fmt.Errorf("invalid note %v", item)
			}
			notes[i] = int(n)
		}
		return notes, nil
	default:
		return nil, fmt.Errorf("expected a note or an array of notes, got %v", arg)
	}
}

func stopCommand(env *env, args []dub.Node) (dub.Node, error) {
	var id int
	if err := readArgs(args, &id); err != nil {
		return nil, err
	}
	env.engine.StopNote(id)
	return nil, nil
}

func stopAllCommand(env *env, args []dub.Node) (dub.Node, error) {
	env.engine.StopAllNotes()
	return nil, nil
}

func setCommand(env *env, args []dub.Node) (dub.Node, error) {
	var key string
	var value float64
	if err := readArgs(args, &key, &value); err != nil {
		return nil, err
	}
	return nil, env.engine.SetParam(key, value)
}

func getCommand(env *env, args []dub.Node) (dub.Node, error) {
	var key string
	if err := readArgs(args, &key); err != nil {
		return nil, err
	}
	v, err := env.engine.GetParam(key)
	if err != nil {
		return nil, err
	}
	return dub.Float(v), nil
}

func bpmCommand(env *env, args []dub.Node) (dub.Node, error) {
	var bpm float64
	if err := readArgs(args, &bpm); err != nil {
		return nil, err
	}
	env.engine.SetBPM(bpm)
	return nil, nil
}

func presetCommand(env *env, args []dub.Node) (dub.Node, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return nil, err
	}
	return nil, audio.LoadPreset(name, env.engine)
}

func presetsCommand(env *env, args []dub.Node) (dub.Node, error) {
	fmt.Println(strings.Join(audio.PresetNames(), "\n"))
	return nil, nil
}

func paramsCommand(env *env, args []dub.Node) (dub.Node, error) {
	for _, key := range audio.ParamKeys() {
		v, _ := env.engine.GetParam(key)
		fmt.Printf("%-22s %v\n", key, v)
	}
	return nil, nil
}

// fxCommand installs an effect in the master chain: fx position kind
// [param value ...]. An empty kind string clears the slot.
func fxCommand(env *env, args []dub.Node) (dub.Node, error) {
	var position int
	var kind string
	if err := readArgs(args[:2], &position, &kind); err != nil {
		return nil, err
	}
	if len(args[2:])%2 != 0 {
		return nil, errors.New("parameters come in key value pairs")
	}
	params := make(map[string]float64)
	rest := args[2:]
	for i := 0; i < len(rest); i += 2 {
		var key string
		var value float64
		if err := readArgs(rest[i:i+2], &key, &value); err != nil {
			return nil, err
		}
		params[key] = value
	}

	chain := env.engine.SaveChain()
	slot := audio.ChainSlot{Position: position, Kind: kind, Enabled: true, Parameters: params}
	replaced := false
	for i := range chain.Slots {
		if chain.Slots[i].Position == position {
			chain.Slots[i] = slot
			replaced = true
		}
	}
	if !replaced {
		chain.Slots = append(chain.Slots, slot)
	}
	if kind == "" {
		kept := chain.Slots[:0]
		for _, s := range chain.Slots {
			if s.Position != position {
				kept = append(kept, s)
			}
		}
		chain.Slots = kept
	}
	return nil, env.engine.LoadChain(chain)
}

func chainSaveCommand(env *env, args []dub.Node) (dub.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(env.engine.SaveChain(), "", "  ")
	if err != nil {
		return nil, err
	}
	return nil, os.WriteFile(file, data, 0644)
}

func chainLoadCommand(env *env, args []dub.Node) (dub.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var chain audio.SerializedChain
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, err
	}
	return nil, env.engine.LoadChain(chain)
}

func qualityCommand(env *env, args []dub.Node) (dub.Node, error) {
	m := env.engine.Monitor()
	level := m.GetCPULevel()
	q := m.GetQualitySettings()
	fmt.Printf("cpu %s  oversampling %dx  polyblep %v  analog %v  hq-filters %v\n",
		colorize(level.String(), levelColor(level)),
		q.Oversampling, q.EnablePolyBLEP, q.EnableAnalogModeling, q.EnableHighQualityFilters)
	return nil, nil
}

func showCommand(env *env, args []dub.Node) (dub.Node, error) {
	renderState(env.engine, os.Stdout)
	return nil, nil
}

// bounceCommand renders offline: bounce file beats [notes [velocity]]. The
// stream is paused for the duration so the callback doesn't pull from the
// engine concurrently.
func bounceCommand(env *env, args []dub.Node) (dub.Node, error) {
	var file string
	var beats float64
	if err := readArgs(args[:2], &file, &beats); err != nil {
		return nil, err
	}
	var notes []int
	velocity := 0.8
	if len(args) > 2 {
		var err error
		if notes, err = notesOf(args[2]); err != nil {
			return nil, err
		}
	}
	if len(args) > 3 {
		if err := readArgs(args[3:], &velocity); err != nil {
			return nil, err
		}
	}

	f, err := os.Create(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if env.sink != nil {
		if err := env.sink.Pause(); err != nil {
			return nil, err
		}
		defer env.sink.Resume()
	}
	return nil, audio.Bounce(env.engine, f, beats, notes, velocity)
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch v := arg.(type) {
			case dub.Float:
				*p = float64(v)
			case dub.Int:
				*p = float64(v)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			v, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(v)
		case *[]dub.Node:
			arr, ok := arg.(dub.Array)
			if !ok {
				return fmt.Errorf("argument error: expected an array")
			}
			*p = arr
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
