package main

import "github.com/pat-apps/teleprompter/internal/bootstrap"

func main() {
	bootstrap.Run()
}
