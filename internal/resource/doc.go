// Package resource holds the in-memory resources a project declares in its
// manifest and reloads them when the watcher reports a change.
//
// Example autorefresh.yaml:
//
//	resources:
//	  - name: hero
//	    path: textures/hero.png
//	  - name: sky
//	    path: //textures/sky.exr
//	  - name: generated-noise
//
// Relative and "//"-prefixed paths resolve against the manifest directory.
// A resource without a path is not file-backed and is never watched.
package resource
