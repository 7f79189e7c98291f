package main

import "github.com/dbsmedya/ytcomments/cmd/ytcomments/cmd"

func main() {
	cmd.Execute()
}
