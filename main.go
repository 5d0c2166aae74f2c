// Package main builds the preloadable shared object:
//
//	go build -buildmode=c-shared -o libelysium.so .
//	LD_PRELOAD=./libelysium.so ./csgo_linux64
//
// Loading it into any other program does nothing.
package main

import "C"

func main() {}
