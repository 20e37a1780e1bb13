// Package process tears down headless browser process trees.
package process
