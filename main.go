package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mrdg/tonic/audio"
)

func main() {
	var (
		bpm    = flag.Float64("bpm", 120, "tempo in beats per minute")
		poly   = flag.Int("poly", 16, "polyphony limit")
		preset = flag.String("preset", "", "preset to load on startup")
		run    = flag.String("run", "", "file with commands to run on startup")
		bounce = flag.String("bounce", "", "render to a wav file instead of opening the audio device")
		beats  = flag.Float64("beats", 4, "length of the bounce in beats")
	)
	flag.Parse()

	monitor := audio.NewCPUMonitor()
	engine := audio.NewEngine(audio.DefaultConfig(), monitor)
	engine.SetBPM(*bpm)
	if err := engine.SetParam("polyphony", float64(*poly)); err != nil {
		log.Fatal(err)
	}
	if *preset != "" {
		if err := audio.LoadPreset(*preset, engine); err != nil {
			log.Fatal(err)
		}
	}

	var commands []string
	if *run != "" {
		f, err := os.Open(*run)
		if err != nil {
			log.Fatal(err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				commands = append(commands, line)
			}
		}
		if err := scanner.Err(); err != nil {
			log.Fatal(err)
		}
		f.Close()
	}

	if *bounce != "" {
		env := &env{engine: engine}
		for _, line := range commands {
			if _, err := env.eval(line); err != nil {
				log.Fatal(err)
			}
		}
		f, err := os.Create(*bounce)
		if err != nil {
			log.Fatal(err)
		}
		if err := audio.Bounce(engine, f, *beats, nil, 0); err != nil {
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		return
	}

	sink, err := audio.NewSink()
	if err != nil {
		log.Fatal(err)
	}
	sink.AddSources(engine)
	if err := sink.Start(); err != nil {
		log.Fatal(err)
	}

	env := &env{engine: engine, sink: sink}
	for _, line := range commands {
		if _, err := env.eval(line); err != nil {
			log.Fatal(err)
		}
	}

	if err := repl(env); err != nil && err != io.EOF {
		fmt.Println(err)
		os.Exit(1)
	}
	sink.Stop()
}
