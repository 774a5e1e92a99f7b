package benchmark

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
)

// CommonOpts represents common flags for every test
type CommonOpts struct {
	Verbose  []bool `short:"v" long:"verbose" description:"Show verbose debug information (-v - info, -vv - debug)"`
	Workers  int    `short:"c" long:"concurrency" description:"sets number of goroutines that runs testing function" default:"0"`
	Loops    int    `short:"l" long:"loops" description:"sets TOTAL(not per worker) number of iterations of testing function(greater priority than DurationSec)" default:"0"`
	Duration int    `short:"d" long:"duration" description:"sets duration(in seconds) for work time for every loop" default:"5"`
	Sleep    int    `short:"S" long:"sleep" description:"sleep given amount of msec between requests" required:"false" default:"0"`
	Repeat   int    `short:"r" long:"repeat" description:"repeat the test given amount of times" required:"false" default:"1"`
	Quiet    bool   `short:"Q" long:"quiet" description:"be quiet and print as less information as possible"`
	RandSeed int64  `short:"s" long:"randseed" description:"Seed used for random number generation" required:"false" default:"1"`
	Config   string `long:"config" description:"INI file with option values, command line flags take precedence" required:"false"`
}

// CLI is a wrapper for go-flags library
type CLI struct {
	parser       *flags.Parser
	commonOpts   *CommonOpts
	defaultGroup bool
}

// Init initializes CLI with given application name and commonOptsPointer.
func (cli *CLI) Init(applicationName string, commonOptsPointer *CommonOpts) {
	cli.parser = flags.NewNamedParser(applicationName, flags.Default)
	cli.commonOpts = commonOptsPointer
	cli.defaultGroup = false
}

// SetApplicationName sets application name.
func (cli *CLI) SetApplicationName(name string) {
	cli.parser.Name = name
}

// addDefaultGroup adds default group with common options once.
func (cli *CLI) addDefaultGroup() error {
	if cli.defaultGroup {
		return nil
	}

	if _, err := cli.parser.AddGroup("Common options", "CommonOptions represents common flags for every test", cli.commonOpts); err != nil {
		return fmt.Errorf("cannot add common options: %w", err)
	}
	cli.defaultGroup = true

	return nil
}

// AddFlagGroup adds flags in struct flagsPtr(should be pointer!) to given group.
func (cli *CLI) AddFlagGroup(groupName, groupDescription string, flagsPtr interface{}) {
	_, err := cli.parser.AddGroup(groupName, groupDescription, flagsPtr)
	handleAddGroupError(err)
}

// handleAddGroupError handles error from AddGroup.
func handleAddGroupError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(0)
	}
}

// checkCommonOpts checks common options.
func (cli *CLI) checkCommonOpts() error {
	if cli.commonOpts.Duration < 1 {
		return errors.New("duration should be > 0")
	}
	if cli.commonOpts.Loops < 0 {
		return errors.New("loops should be >= 0")
	}
	if cli.commonOpts.Repeat < 1 {
		return errors.New("repeat should be > 0")
	}
	if cli.commonOpts.Workers < 1 {
		cli.commonOpts.Workers = 1
	}

	return nil
}

// SetUsage sets usage.
func (cli *CLI) SetUsage(usage string) {
	cli.parser.Usage = usage
}

// SetDescription sets description.
func (cli *CLI) SetDescription(description string) {
	cli.parser.Usage = cli.parser.Usage + "\n" + description
}

// configFileFromArgs finds the --config value before the parser runs,
// the INI file has to be applied first so that flags can override it
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

// ParseArgs applies the optional INI file and then the given command line arguments,
// it returns the positional arguments left after parsing
func (cli *CLI) ParseArgs(args []string) ([]string, error) {
	if err := cli.addDefaultGroup(); err != nil {
		return nil, err
	}

	if path := configFileFromArgs(args); path != "" {
		if err := flags.NewIniParser(cli.parser).ParseFile(path); err != nil {
			return nil, fmt.Errorf("cannot load config file %s: %w", path, err)
		}
	}

	values, err := cli.parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	if err = cli.checkCommonOpts(); err != nil {
		return nil, err
	}

	return values, nil
}

// Parse initializes CLI arguments from os.Args, it exits the process on help or a parse error.
func (cli *CLI) Parse() []string {
	values, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		var flagsError *flags.Error
		if errors.As(err, &flagsError) && flagsError.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Println(err)
		os.Exit(0)
	}

	return values
}
