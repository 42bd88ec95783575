package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/qrv0/svmgen/internal/bundle"
	"github.com/qrv0/svmgen/internal/downloader"
	"github.com/qrv0/svmgen/internal/export"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "init":
		cmdInit()
	case "list":
		cmdList()
	case "pull":
		cmdPull()
	case "inspect":
		cmdInspect()
	case "emx":
		cmdTarget("emx")
	case "mfunc":
		cmdTarget("mfunc")
	case "cfunc":
		cmdTarget("cfunc")
	case "export":
		cmdExport()
	case "check":
		cmdCheck()
	case "verify":
		cmdVerify()
	case "unpack":
		cmdUnpack()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("svmgen - export RBF support vector regression models to 20-sim, MATLAB and C")
	fmt.Println("usage: svmgen <command> [args]")
	fmt.Println("  init                                   initialize ~/.svmgen, write 20Sim_tmp.tmp if absent")
	fmt.Println("  list                                   list models in ~/.svmgen/models")
	fmt.Println("  pull   <url> [--out dir]               download a model or template")
	fmt.Println("  inspect <file.{model,svmb}>            inspect a libsvm model or an artifact bundle")
	fmt.Println("  emx    --model m --scaler s [--name n] write <name>.emx from the 20-sim template")
	fmt.Println("  mfunc  --model m --scaler s [--name n] write <name>.m")
	fmt.Println("  cfunc  --model m --scaler s [--name n] write <name>.c")
	fmt.Println("  export --model m --scaler s [--bundle out.svmb --comp zstd|lz4|none]  write all targets")
	fmt.Println("  check  --emx a.emx --m a.m [--x v1,v2,...] [--n 100] [--tol 1e-5]   compare targets")
	fmt.Println("  verify --in <file.svmb>                verify bundle checksums")
	fmt.Println("  unpack --in <file.svmb> --out <dir>    extract bundled artifacts")
}

var (
	homeDir    = must(os.UserHomeDir())
	svmgenHome = filepath.Join(homeDir, ".svmgen")
	modelsDir  = filepath.Join(svmgenHome, "models")
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func cmdInit() {
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Initialized:", svmgenHome)
	wrote, err := writeDefaultTemplate(export.DefaultTemplateName)
	if err != nil {
		log.Fatal(err)
	}
	if wrote {
		fmt.Println("Wrote template:", export.DefaultTemplateName)
	}
}

// writeDefaultTemplate creates path with the embedded 20-sim template unless
// a file already exists there.
func writeDefaultTemplate(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.WriteString(export.DefaultEMXTemplate); err != nil {
		f.Close()
		os.Remove(path)
		return false, err
	}
	return true, f.Close()
}

func cmdList() {
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".model", ".txt", bundle.Ext, ".safetensors", ".tmp":
			fmt.Println(e.Name())
		}
	}
}

func cmdPull() {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	out := fs.String("out", modelsDir, "destination directory")
	fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("usage: svmgen pull <url> [--out dir]")
		os.Exit(1)
	}
	url := fs.Arg(0)
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	dst := filepath.Join(*out, downloader.FileName(url))
	if err := downloader.Download(ctx, url, dst); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Downloaded:", dst)
}
