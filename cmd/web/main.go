package main

import "edulink_backend/internal/app"

func main() {
	app.Run()
}
