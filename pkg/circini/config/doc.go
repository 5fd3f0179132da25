// Package config loads circini settings from files and the environment.
//
// Settings start from Default, are overlaid by a YAML or JSON file and then
// by CIRCINI_* environment variables:
//
//	s, err := config.Load("circini.yaml")
//	if err != nil {
//	    return err
//	}
//	logger := s.Logger(os.Stderr)
//	ui := component.NewContainer(s.ContainerOptions(logger)...)
//
// A file looks like:
//
//	container:
//	  name: ui
//	  recover_panics: true
//	  max_depth: 8
//	family:
//	  index_threshold: 4
//	log:
//	  level: debug
//	journal:
//	  driver: sqlite
//	  path: ./events.db
//	  stream: session
package config
