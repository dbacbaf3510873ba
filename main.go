package main

import "sprintbot/internal/app"

func main() {
	app.Main()
}
