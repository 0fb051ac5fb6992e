package compiler

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Norgate-AV/swrun/internal/config"
)

// Compiler turns a script into a binary using the configured external compiler
type Compiler struct {
	cfg     *config.Config
	builder *CommandBuilder
	log     logrus.FieldLogger
}

// New creates a compiler for cfg
func New(cfg *config.Config, log logrus.FieldLogger) *Compiler {
	return &Compiler{
		cfg:     cfg,
		builder: NewCommandBuilder(),
		log:     log,
	}
}

// Path returns the compiler executable
func (c *Compiler) Path() string {
	return c.cfg.Compiler
}

// Compile writes the binary for script to output
func (c *Compiler) Compile(script, output string) error {
	cmdArgs, err := c.builder.BuildCommandArgs(c.cfg, script, output)
	if err != nil {
		return err
	}

	log := c.log.WithField("command", FormatCommand(c.cfg.Compiler, cmdArgs))
	log.Debug("Compiling")

	start := time.Now()
	if err := c.builder.ExecuteCommand(c.cfg.Compiler, cmdArgs, c.cfg.Silent); err != nil {
		return err
	}

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("Compiled")
	return nil
}
