package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// evdev is linux only
var availableTargets = []target{
	{goos: "linux", goarch: "arm", goarm: "6"},
	{goos: "linux", goarch: "arm", goarm: "7"},
	{goos: "linux", goarch: "arm64"},
	{goos: "linux", goarch: "386"},
	{goos: "linux", goarch: "amd64"},
}

type target struct {
	goos   string
	goarch string
	goarm  string
}

func (t target) String() string {
	if t.goarm != "" {
		return fmt.Sprintf("%s-%s-v%s", t.goos, t.goarch, t.goarm)
	}
	return fmt.Sprintf("%s-%s", t.goos, t.goarch)
}

func (t target) env() []string {
	env := []string{
		fmt.Sprintf("GOOS=%s", t.goos),
		fmt.Sprintf("GOARCH=%s", t.goarch),
		"CGO_ENABLED=0",
	}
	if t.goarm != "" {
		env = append(env, fmt.Sprintf("GOARM=%s", t.goarm))
	}
	return env
}

type result struct {
	target target
	binary string
	output string
	err    error
}

func build(t target) result {
	binary := filepath.Join(outDir, fmt.Sprintf("%s-%s", basename, t))

	params := []string{"build", "-trimpath", "-o", binary}
	if version != "" {
		params = append(params, "-ldflags", fmt.Sprintf("-X main.version=%s", version))
	}
	if race {
		params = append(params, "-race")
	}
	params = append(params, project)

	cmd := exec.Command("go", params...)
	cmd.Env = append(os.Environ(), t.env()...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	return result{target: t, binary: binary, output: output.String(), err: err}
}

func selectTargets(selection string) ([]target, error) {
	if selection == "all" {
		return availableTargets, nil
	}

	var selected []target
	for _, name := range strings.Split(selection, ",") {
		var found bool
		for _, t := range availableTargets {
			if t.String() == name {
				selected = append(selected, t)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("target not found: %s", name)
		}
	}
	return selected, nil
}

var selection, project, basename, outDir, version string
var race bool

func main() {
	var names []string
	for _, t := range availableTargets {
		names = append(names, t.String())
	}
	flag.StringVar(&selection, "platforms", "all", fmt.Sprintf(
		"comma-separated target platform list\navailable: %s", strings.Join(names, ",")),
	)
	flag.StringVar(&project, "project", "./cmd/n64pad/", "project directory")
	flag.StringVar(&basename, "base", "n64pad", "base filename for output binaries")
	flag.StringVar(&outDir, "out", "./builds", "output directory")
	flag.StringVar(&version, "version", "", "version string embedded into binaries")
	flag.BoolVar(&race, "race", false, "include race detector")
	flag.Parse()

	log.SetFlags(log.Ltime)

	targets, err := selectTargets(selection)
	if err != nil {
		log.Printf("%s", err)
		os.Exit(1)
	}
	var selected []string
	for _, t := range targets {
		selected = append(selected, t.String())
	}
	log.Printf("selected targets: %s", strings.Join(selected, ", "))

	results := make([]result, len(targets))
	wg := sync.WaitGroup{}
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t target) {
			defer wg.Done()
			log.Printf("building %s", t)
			results[i] = build(t)
		}(i, t)
	}
	wg.Wait()

	var failed int
	for _, r := range results {
		if r.err == nil {
			log.Printf("built %s: %s", r.target, r.binary)
			continue
		}
		failed++
		fmt.Printf("\n>>> Failed build: project: %s, target: %s: %s\n", project, r.target, r.err)
		if r.output != "" {
			fmt.Printf("======== OUTPUT ========\n")
			fmt.Printf("%s", r.output)
			fmt.Printf("========================\n")
		}
	}

	if failed > 0 {
		log.Printf("%d of %d builds failed", failed, len(results))
		os.Exit(1)
	}
}
