package main

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/openvasp/openvasp-host/aeswrapper"
	"github.com/openvasp/openvasp-host/fileoperations"
	"github.com/openvasp/openvasp-host/wallet"
)

const (
	actionFromPemToGob = iota
	actionFromGobToPem
	actionNewWallet
	actionReadAddress
)

const usage = `Wallet CLI tool allows to create a new Wallet or act on the local Wallet by using keys from different formats and transforming them between formats.
Please use with the best security practices. GOBINARY is safer to move between machines as this file format is encrypted with AES key.
The wallet signs outgoing travel rule payloads, its public key identifies the host on the message relay.`

func main() {
	primary := pterm.NewStyle(pterm.FgLightCyan, pterm.BgGray, pterm.Bold)
	primary.Println("")
	primary.Println("  OpenVASP host wallet  ")
	primary.Println("")
	var (
		pemFile      string
		walletFile   string
		walletPasswd string
	)

	configurator := func(pemFile, walletFile, walletPasswd string) (fileoperations.Config, error) {
		if walletFile != "" && walletPasswd == "" {
			return fileoperations.Config{}, errors.New("wallet file requires a password")
		}

		return fileoperations.Config{
			WalletPemPath: pemFile,
			WalletPath:    walletFile,
			WalletPasswd:  walletPasswd,
		}, nil
	}

	pemFlag := &cli.StringFlag{
		Name:        "pem",
		Aliases:     []string{"e"},
		Usage:       "Path to PEM file of ED25519 asymmetric key.",
		Destination: &pemFile,
		Required:    true,
	}
	walletFlag := &cli.StringFlag{
		Name:        "wallet",
		Aliases:     []string{"w"},
		Usage:       "Path to encrypted with AES password wallet file of ED25519 asymmetric key.",
		Destination: &walletFile,
		Required:    true,
	}
	passwdFlag := &cli.StringFlag{
		Name:        "passwd",
		Aliases:     []string{"p"},
		Usage:       "32 long password key in hex format to open the wallet file.",
		Destination: &walletPasswd,
		Required:    true,
	}

	action := func(act int) func(*cli.Context) error {
		return func(_ *cli.Context) error {
			cfg, err := configurator(pemFile, walletFile, walletPasswd)
			if err != nil {
				return err
			}
			return runFileOp(act, cfg)
		}
	}

	app := &cli.App{
		Name:  "wallet",
		Usage: usage,
		Commands: []*cli.Command{
			{
				Name:    "new",
				Aliases: []string{"n"},
				Usage:   "Creates new wallet and saves it to encrypted GOBINARY file and PEM format.",
				Action:  action(actionNewWallet),
				Flags:   []cli.Flag{pemFlag, walletFlag, passwdFlag},
			},
			{
				Name:    "topem",
				Aliases: []string{"tp"},
				Usage:   "Reads GOBINARY and saves it to PEM file format.",
				Action:  action(actionFromGobToPem),
				Flags:   []cli.Flag{pemFlag, walletFlag, passwdFlag},
			},
			{
				Name:    "togob",
				Aliases: []string{"tg"},
				Usage:   "Reads PEM file format and saves it to GOBINARY encrypted file format.",
				Action:  action(actionFromPemToGob),
				Flags:   []cli.Flag{pemFlag, walletFlag, passwdFlag},
			},
			{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Reads wallet public address and hex encoded public key.",
				Action:  action(actionReadAddress),
				Flags:   []cli.Flag{walletFlag, passwdFlag},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		printError(err)
		return
	}
}

func runFileOp(action int, cfg fileoperations.Config) error {
	h := fileoperations.New(cfg, aeswrapper.New())
	switch action {
	case actionNewWallet:
		pterm.Info.Println(" CREATING A NEW WALLET ")
		w, err := wallet.New()
		if err != nil {
			return err
		}
		if err := h.SaveWallet(w); err != nil {
			return err
		}
		if err := h.SaveToPem(&w); err != nil {
			return err
		}
		printWalletIdentity(&w)
		printSuccess()
		return nil
	case actionFromGobToPem:
		pterm.Info.Println(" MOVING WALLET TO PEM KEYS ")
		w, err := h.ReadWallet()
		if err != nil {
			return err
		}
		if err := h.SaveToPem(&w); err != nil {
			return err
		}
		printWalletIdentity(&w)
		printSuccess()
		return nil
	case actionFromPemToGob:
		pterm.Info.Println(" MOVING PEM KEYS TO WALLET ")
		w, err := h.ReadFromPem()
		if err != nil {
			return err
		}
		if err := h.SaveWallet(w); err != nil {
			return err
		}
		printWalletIdentity(&w)
		printSuccess()
		return nil
	case actionReadAddress:
		pterm.Info.Println(" READING WALLET PUBLIC ADDRESS ")
		w, err := h.ReadWallet()
		if err != nil {
			return err
		}
		printWalletIdentity(&w)
		printSuccess()
		return nil
	default:
		return errors.New("unimplemented action")
	}
}

func printWalletIdentity(w *wallet.Wallet) {
	pterm.Info.Printf("Wallet public address is [ %s ]\n", w.Address())
	pterm.Info.Printf("Wallet public key is [ %s ]\n", w.PKHex())
}

func printSuccess() {
	pterm.Info.Println("----------")
	pterm.Info.Println(" SUCCESS !")
	pterm.Info.Println("----------")
}

func printError(err error) {
	pterm.Error.Println("")
	pterm.Error.Printf(" %s\n", err.Error())
	pterm.Error.Println("")
}
