// Command cpurunner drives a ROM headlessly and watches its serial port
// for a blargg/mooneye-style "Passed"/"Failed N tests" marker, for use in
// CI without a window.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/rcornwell/GB/internal/system"
)

type CLI struct {
	ROM     string `arg:"" name:"rom" help:"path to the test ROM (.gb/.gbc)" type:"existingfile"`
	BootROM string `name:"bootrom" help:"optional boot ROM to execute from 0x0000"`
	CGB     bool   `name:"cgb" help:"boot the ROM as CGB hardware"`

	Steps   int           `name:"steps" default:"5000000" help:"max CPU steps to run"`
	Until   string        `name:"until" default:"Passed" help:"stop when serial output contains this substring (case-insensitive); empty disables"`
	Auto    bool          `name:"auto" help:"detect Passed / Failed N tests in serial output and exit 0/1 accordingly"`
	Timeout time.Duration `name:"timeout" help:"optional wall-clock timeout, 0 disables"`

	Trace        bool `name:"trace" help:"print a register trace every step"`
	TraceOnFail  bool `name:"trace-on-fail" help:"on -auto failure, dump a recent register-trace window"`
	TraceWindow  int  `name:"trace-window" default:"200" help:"instructions retained for trace-on-fail"`
	SerialWindow int  `name:"serial-window" default:"8192" help:"serial bytes retained for diagnostics on fail"`
}

var failRe = regexp.MustCompile(`(?i)failed\s+(\d+)\s+tests?`)
var stageRe = regexp.MustCompile(`\b(\d{2}:\d{2})\b`)

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("cpurunner"),
		kong.Description("headless Game Boy test-ROM runner"),
		kong.UsageOnError())

	rom, err := os.ReadFile(cli.ROM)
	if err != nil {
		logrus.WithError(err).Fatal("read rom")
	}

	mode := system.DMG
	if cli.CGB {
		mode = system.CGB
	}
	sys, err := system.New(rom, nil, mode)
	if err != nil {
		logrus.WithError(err).Fatal("construct system")
	}
	if cli.BootROM != "" {
		boot, err := os.ReadFile(cli.BootROM)
		if err != nil {
			logrus.WithError(err).Fatal("read bootrom")
		}
		sys.UseBootROM(boot)
	}

	if cli.SerialWindow < 256 {
		cli.SerialWindow = 256
	}
	var ser strings.Builder
	serRing := make([]byte, cli.SerialWindow)
	serIdx, serFill := 0, 0
	sys.Serial().SetSniffer(func(b byte) {
		fmt.Fprintf(os.Stdout, "%c", b)
		ser.WriteByte(b)
		serRing[serIdx] = b
		serIdx = (serIdx + 1) % cli.SerialWindow
		if serFill < cli.SerialWindow {
			serFill++
		}
	})

	type traceEntry struct {
		steps int
		st    string
	}
	var ring []traceEntry
	if cli.TraceOnFail && cli.TraceWindow > 0 {
		ring = make([]traceEntry, cli.TraceWindow)
	}
	ringIdx, ringFill := 0, 0

	start := time.Now()
	var deadline time.Time
	if cli.Timeout > 0 {
		deadline = start.Add(cli.Timeout)
	}
	lastStage := ""

	for i := 0; i < cli.Steps; i++ {
		sys.Step()

		if cli.Trace || cli.TraceOnFail {
			st := sys.CPUState()
			line := fmt.Sprintf("PC=%04X A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t",
				st.PC, st.A, st.F, st.B, st.C, st.D, st.E, st.H, st.L, st.SP, st.IME)
			if cli.Trace {
				fmt.Println(line)
			}
			if ring != nil {
				ring[ringIdx] = traceEntry{steps: i, st: line}
				ringIdx = (ringIdx + 1) % cli.TraceWindow
				if ringFill < cli.TraceWindow {
					ringFill++
				}
			}
		}

		if cli.Auto {
			s := ser.String()
			if mm := stageRe.FindAllString(s, -1); len(mm) > 0 {
				lastStage = mm[len(mm)-1]
			}
			if strings.Contains(strings.ToLower(s), "passed") {
				reportDone(i, start, lastStage)
				os.Exit(0)
			}
			if m := failRe.FindStringSubmatch(s); m != nil {
				fmt.Printf("\ndetected %s in serial output\n", m[0])
				if ringFill > 0 {
					fmt.Printf("\n--- recent trace (last %d instructions) ---\n", ringFill)
					start := (ringIdx - ringFill + cli.TraceWindow) % cli.TraceWindow
					for j := 0; j < ringFill; j++ {
						fmt.Println(ring[(start+j)%cli.TraceWindow].st)
					}
					fmt.Printf("--- end trace ---\n")
				}
				if serFill > 0 {
					dumpSerial(serRing, serIdx, serFill, cli.SerialWindow)
				}
				reportDone(i, start, lastStage)
				os.Exit(1)
			}
		} else if cli.Until != "" {
			if strings.Contains(strings.ToLower(ser.String()), strings.ToLower(cli.Until)) {
				reportDone(i, start, lastStage)
				return
			}
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\ntimeout after %s\n", time.Since(start).Truncate(time.Millisecond))
			reportDone(i, start, lastStage)
			os.Exit(2)
		}
	}
	reportDone(cli.Steps, start, lastStage)
}

func reportDone(steps int, start time.Time, lastStage string) {
	if lastStage != "" {
		fmt.Printf("last stage seen: %s\n", lastStage)
	}
	fmt.Printf("\ndone: steps=%d elapsed=%s\n", steps, time.Since(start).Truncate(time.Millisecond))
}

func dumpSerial(ring []byte, idx, fill, window int) {
	fmt.Printf("\n--- recent serial (last %d bytes) ---\n", fill)
	start := (idx - fill + window) % window
	for j := 0; j < fill; j++ {
		fmt.Printf("%c", ring[(start+j)%window])
	}
	fmt.Printf("\n--- end serial ---\n")
}
