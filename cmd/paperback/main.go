// Command paperback is the reference CLI for creating and recovering paper
// backups. It's a thin collaborator: it owns file I/O and human-readable
// codeword presentation, and defers every cryptographic decision to the
// paperback package and its pkg/document, pkg/keyshard, and pkg/quorum
// dependencies. PDF/QR rendering is explicitly out of scope — this CLI
// prints multibase strings and codewords as plain text.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/cyphar-go/paperback"
	"github.com/cyphar-go/paperback/internal/cmdutil"
	"github.com/cyphar-go/paperback/pkg/document"
	"github.com/cyphar-go/paperback/pkg/keyshard"
	"github.com/cyphar-go/paperback/pkg/quorum"
	"github.com/cyphar-go/paperback/pkg/wire"
)

func main() {
	app := &cli.App{
		Name:  "paperback",
		Usage: "paper backup generator suitable for long-term storage",
		Description: `Splits a secret into a main document and N key shards, any
quorum of which can later recover the secret or mint further shards.`,
		Version: "0.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable verbose logging"},
		},
		Commands: []*cli.Command{
			backupCommand,
			recoverCommand,
			expandCommand,
			recreateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "paperback:", err)
		os.Exit(1)
	}
}

func loggerFrom(c *cli.Context) (*zap.Logger, error) {
	return cmdutil.NewLogger(c.Bool("debug"))
}

var backupCommand = &cli.Command{
	Name:  "backup",
	Usage: "create a new backup from a secret",
	Flags: []cli.Flag{
		&cli.UintFlag{Name: "quorum-size", Aliases: []string{"k"}, Required: true, Usage: "number of key shards required to recover"},
		&cli.StringFlag{Name: "secret-file", Required: true, Usage: "file containing the secret to back up"},
		&cli.BoolFlag{Name: "sealed", Usage: "omit the signing key, preventing future shard expansion"},
	},
	Action: func(c *cli.Context) error {
		logger, err := loggerFrom(c)
		if err != nil {
			return cmdutil.Wrap(err, "building logger")
		}
		defer logger.Sync()
		logger = logger.With(zap.String("runID", cmdutil.RunID()))

		secret, err := os.ReadFile(c.String("secret-file"))
		if err != nil {
			return cmdutil.Wrapf(err, "reading secret file %q", c.String("secret-file"))
		}

		quorumSize := uint32(c.Uint("quorum-size"))
		var backup *paperback.Backup
		if c.Bool("sealed") {
			backup, err = paperback.NewSealed(quorumSize, secret)
		} else {
			backup, err = paperback.New(quorumSize, secret)
		}
		if err != nil {
			return cmdutil.Wrap(err, "creating backup")
		}

		main := backup.MainDocument()
		logger.Info("created main document", zap.String("id", main.ID()), zap.Uint32("quorumSize", quorumSize))
		fmt.Printf("main document [%s]:\n%s\n\n", main.ID(), main.ToMultibase())

		for i := uint32(0); i < quorumSize; i++ {
			shard, err := backup.NextShard()
			if err != nil {
				return cmdutil.Wrap(err, "minting key shard")
			}
			encrypted, words, err := shard.Encrypt()
			if err != nil {
				return cmdutil.Wrap(err, "encrypting key shard")
			}
			fmt.Printf("key shard %d [%s] (document %s, checksum %s):\n%s\ncodewords: %s\n\n",
				i+1, shard.ID(), shard.DocumentID(), encrypted.ChecksumString(),
				wire.ToMultibase(encrypted.Bytes()), strings.Join(words, " "))
		}
		return nil
	},
}

var recoverCommand = &cli.Command{
	Name:  "recover",
	Usage: "recover a secret from a main document and a quorum of key shards",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "main-document", Required: true, Usage: "multibase-encoded main document"},
		&cli.StringSliceFlag{Name: "shard-codewords", Required: true, Usage: "one BIP-39 phrase per key shard (repeatable)"},
		&cli.StringSliceFlag{Name: "shard-wire", Required: true, Usage: "one multibase-encoded encrypted key shard per --shard-codewords, in the same order"},
	},
	Action: func(c *cli.Context) error {
		doc, err := document.DecodeMultibase(c.String("main-document"))
		if err != nil {
			return cmdutil.Wrap(err, "decoding main document")
		}

		uq := quorum.NewUntrustedQuorum()
		uq.PushMainDocument(doc)

		wires := c.StringSlice("shard-wire")
		phrases := c.StringSlice("shard-codewords")
		if len(wires) != len(phrases) {
			return fmt.Errorf("paperback: got %d --shard-wire but %d --shard-codewords", len(wires), len(phrases))
		}
		for i, w := range wires {
			shard, err := decodeEncryptedShard(w, strings.Fields(phrases[i]))
			if err != nil {
				return cmdutil.Wrapf(err, "decoding shard %d", i)
			}
			uq.PushShard(shard)
		}

		q, err := uq.Validate()
		if err != nil {
			return cmdutil.Wrap(err, "validating quorum")
		}

		secret, err := q.RecoverDocument()
		if err != nil {
			return cmdutil.Wrap(err, "recovering document")
		}
		os.Stdout.Write(secret)
		return nil
	},
}

var expandCommand = &cli.Command{
	Name:  "expand",
	Usage: "mint a brand-new key shard from a quorum of existing ones",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "main-document", Usage: "multibase-encoded main document (optional if enough shards are given)"},
		&cli.StringSliceFlag{Name: "shard-codewords", Required: true, Usage: "one BIP-39 phrase per key shard (repeatable)"},
		&cli.StringSliceFlag{Name: "shard-wire", Required: true, Usage: "one multibase-encoded encrypted key shard per --shard-codewords, in the same order"},
	},
	Action: func(c *cli.Context) error {
		q, err := buildQuorum(c)
		if err != nil {
			return err
		}
		shard, err := q.NewShard(quorum.FreshShard())
		if err != nil {
			return cmdutil.Wrap(err, "minting new shard")
		}
		return printShard(shard)
	},
}

var recreateCommand = &cli.Command{
	Name:  "recreate",
	Usage: "deterministically recreate a previously-lost key shard by its ID",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "main-document", Usage: "multibase-encoded main document (optional if enough shards are given)"},
		&cli.StringSliceFlag{Name: "shard-codewords", Required: true, Usage: "one BIP-39 phrase per key shard (repeatable)"},
		&cli.StringSliceFlag{Name: "shard-wire", Required: true, Usage: "one multibase-encoded encrypted key shard per --shard-codewords, in the same order"},
		&cli.StringFlag{Name: "shard-id", Required: true, Usage: "ID of the shard to recreate"},
	},
	Action: func(c *cli.Context) error {
		q, err := buildQuorum(c)
		if err != nil {
			return err
		}
		shard, err := q.NewShard(quorum.ExistingShard(c.String("shard-id")))
		if err != nil {
			return cmdutil.Wrap(err, "recreating shard")
		}
		return printShard(shard)
	},
}

func buildQuorum(c *cli.Context) (*quorum.Quorum, error) {
	uq := quorum.NewUntrustedQuorum()

	if md := c.String("main-document"); md != "" {
		doc, err := document.DecodeMultibase(md)
		if err != nil {
			return nil, cmdutil.Wrap(err, "decoding main document")
		}
		uq.PushMainDocument(doc)
	}

	wires := c.StringSlice("shard-wire")
	phrases := c.StringSlice("shard-codewords")
	if len(wires) != len(phrases) {
		return nil, fmt.Errorf("paperback: got %d --shard-wire but %d --shard-codewords", len(wires), len(phrases))
	}
	for i, w := range wires {
		shard, err := decodeEncryptedShard(w, strings.Fields(phrases[i]))
		if err != nil {
			return nil, cmdutil.Wrapf(err, "decoding shard %d", i)
		}
		uq.PushShard(shard)
	}

	q, err := uq.Validate()
	if err != nil {
		return nil, cmdutil.Wrap(err, "validating quorum")
	}
	return q, nil
}

func decodeEncryptedShard(multibaseStr string, codewords []string) (keyshard.KeyShard, error) {
	raw, err := wire.FromMultibase(multibaseStr)
	if err != nil {
		return keyshard.KeyShard{}, err
	}
	enc, err := keyshard.DecodeEncryptedKeyShard(wire.NewReader(raw))
	if err != nil {
		return keyshard.KeyShard{}, err
	}
	return enc.Decrypt(codewords)
}

func printShard(shard keyshard.KeyShard) error {
	encrypted, words, err := shard.Encrypt()
	if err != nil {
		return cmdutil.Wrap(err, "encrypting new shard")
	}
	fmt.Printf("key shard [%s] (document %s, checksum %s):\n%s\ncodewords: %s\n",
		shard.ID(), shard.DocumentID(), encrypted.ChecksumString(),
		wire.ToMultibase(encrypted.Bytes()), strings.Join(words, " "))
	return nil
}
