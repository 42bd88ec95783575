package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/qrv0/svmgen/internal/bundle"
)

func cmdVerify() {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	in := fs.String("in", "", "input bundle")
	fs.Parse(os.Args[2:])
	if *in == "" {
		fmt.Println("usage: svmgen verify --in model.svmb")
		os.Exit(1)
	}
	r, err := bundle.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: open error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()
	bad, err := bundle.Verify(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		os.Exit(2)
	}
	for _, m := range bad {
		fmt.Println(m)
	}
	if len(bad) > 0 {
		fmt.Fprintln(os.Stderr, "checksum verify: FAILED")
		os.Exit(3)
	}
	fmt.Println("checksum verify: OK")
}

func cmdUnpack() {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	in := fs.String("in", "", "input bundle")
	out := fs.String("out", ".", "output directory")
	fs.Parse(os.Args[2:])
	if *in == "" {
		fmt.Println("usage: svmgen unpack --in model.svmb --out dir")
		os.Exit(1)
	}
	paths, err := unpack(*in, *out)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range paths {
		fmt.Println("Wrote:", p)
	}
}

// unpack extracts every artifact section of the bundle at path into dir
// under the file name recorded in the manifest.
func unpack(path, dir string) ([]string, error) {
	r, err := bundle.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	man, err := r.Manifest()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range r.TOC {
		if e.TypeID == bundle.TypeManifest {
			continue
		}
		name := filepath.Base(man.Files[fmt.Sprint(e.TypeID)])
		if name == "." || name == string(filepath.Separator) {
			name = fmt.Sprintf("%s.%s", man.Name, bundle.SectionName(e.TypeID))
		}
		data, err := r.SectionUncompressed(e.TypeID)
		if err != nil {
			return paths, err
		}
		dst := filepath.Join(dir, name)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, dst)
	}
	return paths, nil
}
