package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/qrv0/svmgen/internal/bundle"
	"github.com/qrv0/svmgen/internal/export"
	"github.com/qrv0/svmgen/internal/svm"
)

func cmdInspect() {
	if len(os.Args) < 3 {
		fmt.Println("usage: svmgen inspect <file.{model,svmb}>")
		os.Exit(1)
	}
	path := os.Args[2]
	var err error
	if filepath.Ext(path) == bundle.Ext {
		err = inspectBundle(path)
	} else {
		err = inspectModel(path)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func inspectModel(path string) error {
	m, err := svm.Load(path)
	if err != nil {
		return err
	}
	fmt.Printf("svm_type:    %s\n", m.SvmTypeName())
	fmt.Printf("kernel_type: %s\n", m.KernelTypeName())
	fmt.Printf("gamma:       %g\n", m.Gamma)
	fmt.Printf("rho:         %g\n", m.Rho)
	fmt.Printf("total_sv:    %d\n", m.NSV())
	fmt.Printf("features:    %d\n", export.InferDim(m.SV))
	if m.KernelType != svm.RBF {
		fmt.Println("note: only rbf models can be exported")
	}
	return nil
}

func inspectBundle(path string) error {
	r, err := bundle.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	man, err := r.Manifest()
	if err != nil {
		return err
	}
	b, _ := json.MarshalIndent(struct {
		Name        string `json:"name"`
		NSV         int    `json:"n_sv"`
		Dim         int    `json:"dim"`
		Created     string `json:"created"`
		Compression string `json:"compression"`
	}{man.Name, man.NSV, man.Dim, man.Created.Format(export.TimeLayout), man.Compression}, "", "  ")
	fmt.Println("MANIFEST:")
	fmt.Println(string(b))
	fmt.Println("Sections:")
	for _, e := range r.TOC {
		fmt.Printf("  %-8s offset=%d size=%d comp=%s %s\n", bundle.SectionName(e.TypeID), e.Offset, e.Size,
			bundle.CompressionName(e.Flags), man.Files[fmt.Sprint(e.TypeID)])
	}
	keys := make([]string, 0, len(man.ChecksumIndex))
	for k := range man.ChecksumIndex {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("Checksums:")
	for _, k := range keys {
		c := man.ChecksumIndex[k]
		fmt.Printf("  section %s: chunks=%d algo=%s\n", k, c.Count, c.Algo)
	}
	return nil
}
