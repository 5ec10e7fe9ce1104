package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const settleTime = 200 * time.Millisecond

// watchFiles calls onChange for an input after it has been written. Blocks until the watcher fails.
func watchFiles(inputs []string, onChange func(string) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	targets := map[string]string{}
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return err
		}
		targets[abs] = input
		// editors often replace the file, so watch the directory
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}

	pending := map[string]bool{}
	timer := time.NewTimer(settleTime)
	timer.Stop()
	log.Println("watching", len(inputs), "files")
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			input, found := targets[filepath.Clean(ev.Name)]
			if !found || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			pending[input] = true
			timer.Reset(settleTime)
		case <-timer.C:
			for input := range pending {
				log.Println("reimport", input)
				if err := onChange(input); err != nil {
					log.Println(err)
				}
			}
			pending = map[string]bool{}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
