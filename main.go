package main

import "github.com/danielhkuo/ward-admin/commands"

func main() {
	commands.Execute()
}
