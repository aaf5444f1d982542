package main

import (
	"fmt"

	"github.com/FlyingPenguinGit/TypingRythm/internal/config"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); nil != err {
		logrus.Fatalln(err)
	}
}

func run() error {
	if err := config.Parse(); nil != err {
		return err
	}

	p := &Program{}
	defer p.Close()
	if err := p.Init(); nil != err {
		return err
	}
	if err := p.Run(); nil != err {
		return err
	}
	fmt.Print(p.Summary())
	return nil
}
