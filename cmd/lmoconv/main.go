package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/binzume/lmoconv/importer"
)

type options struct {
	outDir     string
	saveConfig bool

	scale      float64
	origin     string
	colors     bool
	noSkeleton bool
	impostor   bool
	physics    bool
	convex     bool
	submodels  bool
	prefab     bool
	texSize    int
	rootBone   string
}

// applyFlags overrides the config with the flags given on the command line.
func applyFlags(cfg *importer.Config, opts *options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scale":
			cfg.MeshScale = float32(opts.scale)
		case "origin":
			cfg.Origin = importer.Origin(opts.origin)
		case "colors":
			cfg.VertexColors = opts.colors
		case "noskel":
			cfg.IgnoreSkeleton = opts.noSkeleton
		case "impostor":
			cfg.CreateImpostor = opts.impostor
		case "physics":
			cfg.Physics = opts.physics
		case "convex":
			cfg.MakeConvex = opts.convex
		case "submodels":
			cfg.Submodels = opts.submodels
		case "prefab":
			cfg.Prefab = opts.prefab
		case "texsize":
			cfg.TextureMaxSize = opts.texSize
		case "root":
			cfg.RootMotionBone = opts.rootBone
		}
	})
}

func loadConfig(input string, opts *options) (*importer.Config, error) {
	path := importer.ConfigPath(input)
	cfg, err := importer.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.saveConfig {
		if err := importer.SaveConfig(path, cfg); err != nil {
			return nil, err
		}
		log.Println("saved", path)
	}
	return cfg, nil
}

func importFile(input string, opts *options) error {
	cfg, err := loadConfig(input, opts)
	if err != nil {
		return err
	}
	outDir := opts.outDir
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	return importer.NewSession(cfg).Import(input, importer.NewDirOutput(outDir))
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.fbx [input2.glb ...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -dump output.lmo\n", os.Args[0])
		flag.PrintDefaults()
	}
	opts := &options{}
	flag.StringVar(&opts.outDir, "o", "", "output directory (default: next to the input)")
	flag.BoolVar(&opts.saveConfig, "saveconfig", false, "write the effective settings to <input>.import.yaml")
	flag.Float64Var(&opts.scale, "scale", 1, "mesh scale")
	flag.StringVar(&opts.origin, "origin", "source", "source, center or bottom")
	flag.BoolVar(&opts.colors, "colors", false, "import vertex colors")
	flag.BoolVar(&opts.noSkeleton, "noskel", false, "ignore skeleton")
	flag.BoolVar(&opts.impostor, "impostor", false, "create impostor mesh")
	flag.BoolVar(&opts.physics, "physics", false, "write physics geometry")
	flag.BoolVar(&opts.convex, "convex", false, "convex physics geometry")
	flag.BoolVar(&opts.submodels, "submodels", false, "write a model per mesh")
	flag.BoolVar(&opts.prefab, "prefab", false, "write prefab")
	flag.IntVar(&opts.texSize, "texsize", 0, "max texture size. 0:unlimited")
	flag.StringVar(&opts.rootBone, "root", "", "root motion bone")
	watch := flag.Bool("watch", false, "re-import when an input changes")
	dump := flag.Bool("dump", false, "print the contents of compiled resources")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	if *dump {
		for _, f := range flag.Args() {
			if err := dumpResource(f, os.Stdout); err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	failed := false
	for _, input := range flag.Args() {
		if err := importFile(input, opts); err != nil {
			log.Println(err)
			failed = true
		}
	}

	if *watch {
		if err := watchFiles(flag.Args(), func(input string) error {
			return importFile(input, opts)
		}); err != nil {
			log.Fatal(err)
		}
		return
	}
	if failed {
		os.Exit(1)
	}
}
