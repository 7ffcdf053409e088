package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tangzhangming/elfc/internal/compiler"
	"github.com/tangzhangming/elfc/internal/config"
	"github.com/tangzhangming/elfc/internal/errors"
	"github.com/tangzhangming/elfc/internal/i18n"
	"github.com/tangzhangming/elfc/internal/logging"
)

const (
	Version = "0.1.0"
)

// 全局语言参数
var globalLang string

func main() {
	args := preprocessArgs(os.Args[1:])

	InitLanguage(globalLang)

	// 同步设置诊断信息语言
	switch GetLanguage() {
	case LangChinese:
		i18n.SetLanguage(i18n.LangChinese)
	default:
		i18n.SetLanguage(i18n.LangEnglish)
	}

	if len(args) < 1 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]

	switch command {
	case "build":
		os.Exit(cmdBuild(args[1:]))
	case "check":
		os.Exit(cmdCheck(args[1:]))
	case "init":
		os.Exit(cmdInit(args[1:]))
	case "version", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		// elfc <input> [output] 等价于 build
		if !isFlag(args[0]) {
			os.Exit(cmdBuild(shorthand(args)))
		}
		fmt.Fprintf(os.Stderr, Msg().ErrUnknownCmd+"\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// preprocessArgs 预处理参数，提取全局 --lang 参数
func preprocessArgs(args []string) []string {
	var result []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--lang" || arg == "-lang" {
			if i+1 < len(args) {
				globalLang = args[i+1]
				i++
				continue
			}
		} else if strings.HasPrefix(arg, "--lang=") {
			globalLang = strings.TrimPrefix(arg, "--lang=")
			continue
		} else if strings.HasPrefix(arg, "-lang=") {
			globalLang = strings.TrimPrefix(arg, "-lang=")
			continue
		}
		result = append(result, arg)
	}
	return result
}

// shorthand 把 <input> <output> 改写为 -o <output> <input>
func shorthand(args []string) []string {
	if len(args) == 2 && !isFlag(args[1]) {
		return []string{"-o", args[1], args[0]}
	}
	return args
}

func isFlag(s string) bool {
	return len(s) > 0 && s[0] == '-'
}

func printUsage() {
	m := Msg()
	fmt.Printf(m.VersionTitle+"\n\n", Version)
	fmt.Println(m.HelpUsage)
	fmt.Println("  elfc [--lang en|zh] <command> [options] [arguments]")
	fmt.Println("  elfc <input.ast> [output.o]")
	fmt.Println()
	fmt.Println(m.HelpCommands)
	fmt.Printf("  build <file>    %s\n", m.CmdBuild)
	fmt.Printf("  check <file>    %s\n", m.CmdCheck)
	fmt.Printf("  init            %s\n", m.CmdInit)
	fmt.Printf("  version         %s\n", m.CmdVersion)
	fmt.Printf("  help            %s\n", m.CmdHelp)
	fmt.Println()
	fmt.Println(m.HelpOptions)
	fmt.Printf("  -o <file>       %s\n", m.OptOutput)
	fmt.Printf("  -S              %s\n", m.OptListing)
	fmt.Printf("  -config <file>  %s\n", m.OptConfig)
	fmt.Printf("  -v              %s\n", m.OptVerbose)
	fmt.Printf("  -log <file>     %s\n", m.OptLog)
	fmt.Printf("  -json           %s\n", m.OptJSON)
	fmt.Printf("  --lang <en|zh>  %s\n", m.OptLang)
	fmt.Println()
	fmt.Println(m.HelpExamples)
	fmt.Println("  elfc build prog.ast")
	fmt.Println("  elfc build -S -o out/prog.o prog.ast")
	fmt.Println("  elfc check -v prog.ast")
	fmt.Println("  elfc --lang zh help")
}

// driverFlags build 和 check 共用的选项
type driverFlags struct {
	config  *string
	verbose *bool
	logPath *string
	listing *bool
}

func newFlagSet(name string) (*flag.FlagSet, *driverFlags) {
	m := Msg()
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	df := &driverFlags{
		config:  fs.String("config", "", m.OptConfig),
		verbose: fs.Bool("v", false, m.OptVerbose),
		logPath: fs.String("log", "", m.OptLog),
		listing: fs.Bool("S", false, m.OptListing),
	}
	fs.Usage = func() {
		fmt.Printf("%s elfc %s [options] <file>\n\n", m.HelpUsage, name)
		fmt.Println(m.HelpOptions)
		fs.PrintDefaults()
	}
	return fs, df
}

// session 按选项加载配置和日志，创建编译会话
func (df *driverFlags) session(input string) (*compiler.Session, *zap.Logger, bool) {
	m := Msg()
	log, err := logging.New(logging.Options{Verbose: *df.verbose, LogPath: *df.logPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, m.ErrLogger+"\n", err)
		return nil, nil, false
	}

	path := *df.config
	if path == "" {
		path = config.FindConfigFile(input)
	}
	cfg := config.Default()
	if path != "" {
		if cfg, err = config.LoadConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, m.ErrConfig+"\n", err)
			_ = log.Sync()
			return nil, nil, false
		}
		log.Debug("config loaded", zap.String("path", path))
	}

	return compiler.NewSession(cfg, compiler.WithLogger(log)), log, true
}

// report 输出诊断信息
func report(err error) {
	fmt.Fprint(os.Stderr, errors.NewFormatter().Format(err))
}

// cmdBuild 编译为目标文件
func cmdBuild(args []string) int {
	m := Msg()
	fs, df := newFlagSet("build")
	output := fs.String("o", "", m.OptOutput)

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fs.Usage()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, m.ErrNoInput)
		return 1
	}

	input := fs.Arg(0)
	if *output == "" {
		*output = strings.TrimSuffix(input, filepath.Ext(input)) + ".o"
	}

	s, log, ok := df.session(input)
	if !ok {
		return 1
	}
	defer func() { _ = log.Sync() }()
	defer s.Close()

	res, err := s.CompileFile(input, *output)
	if err != nil {
		report(err)
		return 1
	}
	if *df.listing {
		fmt.Print(res.Program.String())
	}
	fmt.Printf(m.SuccessBuildComplete+"\n", *output, len(res.Bytes))
	return 0
}

// cmdCheck 只做代码生成
func cmdCheck(args []string) int {
	m := Msg()
	fs, df := newFlagSet("check")
	asJSON := fs.Bool("json", false, m.OptJSON)

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fs.Usage()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, m.ErrNoInput)
		return 1
	}

	input := fs.Arg(0)
	s, log, ok := df.session(input)
	if !ok {
		return 1
	}
	defer func() { _ = log.Sync() }()
	defer s.Close()

	root, err := s.ParseFile(input)
	if err != nil {
		report(err)
		return 1
	}
	prog, err := s.Generate(root)
	if err != nil {
		report(err)
		return 1
	}
	if *asJSON {
		if err := newCheckReport(input, prog).writeJSON(os.Stdout); err != nil {
			report(err)
			return 1
		}
		return 0
	}
	if *df.listing || *df.verbose {
		fmt.Print(prog.String())
	}
	fmt.Printf(m.SuccessCheckOK+"\n", input, len(prog.Routines), prog.Len())
	return 0
}

// cmdInit 在当前目录生成默认配置文件
func cmdInit(args []string) int {
	m := Msg()
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, m.OptForce)
	fs.Usage = func() {
		fmt.Println(m.HelpUsage + " elfc init [options]")
		fmt.Println()
		fmt.Println(m.HelpOptions)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	path := config.ConfigFileName
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, m.ErrConfigExists+"\n", path)
		return 1
	}
	if err := config.Default().Save(path); err != nil {
		fmt.Fprintf(os.Stderr, m.ErrConfig+"\n", err)
		return 1
	}
	fmt.Printf(m.SuccessInit+"\n", path)
	return 0
}

// cmdVersion 显示版本信息
func cmdVersion() {
	m := Msg()
	fmt.Printf(m.VersionTitle+"\n", Version)
	fmt.Println(m.VersionDesc)
}
