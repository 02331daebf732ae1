package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gtdone/internal/contexts"
	"gtdone/internal/ops"
	"gtdone/internal/project"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "backup":
		err = cmdBackup(os.Args[2:])
	case "restore":
		err = cmdRestore(os.Args[2:])
	case "drill":
		err = cmdDrill(os.Args[2:])
	case "export":
		err = cmdExport(os.Args[2:])
	case "import":
		err = cmdImport(os.Args[2:])
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, os.Args[1]+" failed:", err)
		os.Exit(1)
	}
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "gtdone-"+ts+".tar.gz")
	}

	if err := ops.BackupDataDir(*dataDir, *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	if err := ops.RestoreDataDir(*archive, *target); err != nil {
		return err
	}
	return ops.VerifyDataDir(*target)
}

func cmdDrill(args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "gtdone-drill-"+ts+".tar.gz")
	restoreDir := filepath.Join(*workDir, "gtdone-drill-restore-"+ts)

	if err := ops.BackupDataDir(*dataDir, archive); err != nil {
		return err
	}
	if err := ops.RestoreDataDir(archive, restoreDir); err != nil {
		return err
	}
	if err := ops.VerifyDataDir(restoreDir); err != nil {
		return err
	}

	srcDigest, err := dirDigest(*dataDir)
	if err != nil {
		return err
	}
	restoreDigest, err := dirDigest(restoreDir)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}

	fmt.Println("backup:", archive)
	fmt.Println("restored:", restoreDir)
	fmt.Println("digest:", srcDigest)
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output snapshot path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exporter, err := buildExporter(*dataDir)
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return exporter.WriteSnapshot(w, time.Now())
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	in := fs.String("in", "", "snapshot JSON path")
	mode := fs.String("mode", "replace", "import mode: replace or merge")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("in is required")
	}

	exporter, err := buildExporter(*dataDir)
	if err != nil {
		return err
	}

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := exporter.ImportSnapshot(f, ops.ImportMode(*mode))
	if err != nil {
		return err
	}
	fmt.Printf("imported %d tasks, %d projects, %d contexts\n", result.Tasks, result.Projects, result.Contexts)
	return nil
}

func buildExporter(dataDir string) (*ops.Exporter, error) {
	taskRepo, err := task.NewFileRepo(dataDir)
	if err != nil {
		return nil, err
	}
	projectRepo, err := project.NewFileRepo(dataDir)
	if err != nil {
		return nil, err
	}
	contextRepo, err := contexts.NewFileRepo(dataDir)
	if err != nil {
		return nil, err
	}
	return &ops.Exporter{
		Tasks:    taskRepo,
		Projects: projectRepo,
		Contexts: contextRepo,
		Events:   telemetry.NewMemoryRepository(),
	}, nil
}

func dirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  gtdone-ops backup  --data-dir data --out backups/backup.tar.gz")
	fmt.Println("  gtdone-ops restore --archive backups/backup.tar.gz --target-dir data-restored")
	fmt.Println("  gtdone-ops drill   --data-dir data --work-dir /tmp")
	fmt.Println("  gtdone-ops export  --data-dir data --out snapshot.json")
	fmt.Println("  gtdone-ops import  --data-dir data --in snapshot.json --mode replace|merge")
}
