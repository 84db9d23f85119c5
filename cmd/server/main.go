package main

import "privacygate/internal/app/server"

func main() {
	server.Run()
}
