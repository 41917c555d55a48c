package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Azurboy/MindVault-VibeSui/internal/crypto"
	"github.com/Azurboy/MindVault-VibeSui/internal/history"
	"github.com/Azurboy/MindVault-VibeSui/internal/ledger"
	"github.com/Azurboy/MindVault-VibeSui/internal/proof"
	"github.com/Azurboy/MindVault-VibeSui/internal/session"
	"github.com/Azurboy/MindVault-VibeSui/internal/storage"
	"github.com/Azurboy/MindVault-VibeSui/internal/wallet"
	"github.com/Azurboy/MindVault-VibeSui/internal/walrus"
)

const defaultRPCURL = "https://fullnode.testnet.sui.io:443"

// Payload kinds recorded on-chain alongside each pointer.
const (
	payloadSingle = 0
	payloadBatch  = 1
)

func main() {
	// ---- wallet-init ----
	winitCmd := flag.NewFlagSet("wallet-init", flag.ExitOnError)
	winitKeystore := winitCmd.String("keystore", "./wallet.json", "path to wallet keystore")

	// ---- wallet-addr ----
	waddrCmd := flag.NewFlagSet("wallet-addr", flag.ExitOnError)
	waddrKeystore := waddrCmd.String("keystore", "./wallet.json", "path to wallet keystore")

	// ---- create-vault ----
	cvCmd := flag.NewFlagSet("create-vault", flag.ExitOnError)
	cvPackage := cvCmd.String("package", "", "vault package id")
	cvRPC := cvCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")

	// ---- store ----
	storeCmd := flag.NewFlagSet("store", flag.ExitOnError)
	storeKeystore := storeCmd.String("keystore", "./wallet.json", "path to wallet keystore")
	storeVault := storeCmd.String("vault", "", "vault object id")
	storePackage := storeCmd.String("package", "", "vault package id")
	storeRPC := storeCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")
	storeText := storeCmd.String("text", "", "message text to store")
	storeRole := storeCmd.String("role", history.RoleUser, "message role (user|assistant)")
	storeBatch := storeCmd.String("batch", "", "path to a JSON array of messages (overrides --text)")
	storeBlobDir := storeCmd.String("blob-dir", "", "local blob directory instead of Walrus")
	storeMongoURI := storeCmd.String("mongo", "", "MongoDB URI instead of Walrus")
	storePublisher := storeCmd.String("publisher", "", "Walrus publisher URL")
	storeAggregator := storeCmd.String("aggregator", "", "Walrus aggregator URL")
	storeEpochs := storeCmd.Int("epochs", 0, "Walrus storage epochs")

	// ---- history ----
	histCmd := flag.NewFlagSet("history", flag.ExitOnError)
	histKeystore := histCmd.String("keystore", "./wallet.json", "path to wallet keystore")
	histVault := histCmd.String("vault", "", "vault object id")
	histPackage := histCmd.String("package", "", "vault package id")
	histRPC := histCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")
	histBlobDir := histCmd.String("blob-dir", "", "local blob directory instead of Walrus")
	histMongoURI := histCmd.String("mongo", "", "MongoDB URI instead of Walrus")
	histAggregator := histCmd.String("aggregator", "", "Walrus aggregator URL")

	// ---- vaults ----
	vaultsCmd := flag.NewFlagSet("vaults", flag.ExitOnError)
	vaultsOwner := vaultsCmd.String("owner", "", "owner address (defaults to keystore address)")
	vaultsKeystore := vaultsCmd.String("keystore", "./wallet.json", "path to wallet keystore")
	vaultsPackage := vaultsCmd.String("package", "", "vault package id")
	vaultsRPC := vaultsCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")

	// ---- grant ----
	grantCmd := flag.NewFlagSet("grant", flag.ExitOnError)
	grantVault := grantCmd.String("vault", "", "vault object id")
	grantPackage := grantCmd.String("package", "", "vault package id")
	grantRPC := grantCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")
	grantGrantee := grantCmd.String("grantee", "", "grantee address")
	grantScope := grantCmd.Uint("scope", 0, "0 read, 1 read-write")
	grantExpires := grantCmd.Uint64("expires", 0, "expiry epoch millis (0 = never)")

	// ---- revoke ----
	revokeCmd := flag.NewFlagSet("revoke", flag.ExitOnError)
	revokeVault := revokeCmd.String("vault", "", "vault object id")
	revokePackage := revokeCmd.String("package", "", "vault package id")
	revokeRPC := revokeCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")
	revokeGrantee := revokeCmd.String("grantee", "", "grantee address")

	// ---- delete ----
	delCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	delVault := delCmd.String("vault", "", "vault object id")
	delPackage := delCmd.String("package", "", "vault package id")
	delRPC := delCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")
	delIndex := delCmd.Uint64("index", 0, "pointer index to delete")

	// ---- prove ----
	proveCmd := flag.NewFlagSet("prove", flag.ExitOnError)
	proveVault := proveCmd.String("vault", "", "vault object id")
	provePackage := proveCmd.String("package", "", "vault package id")
	proveRPC := proveCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")
	proveNetwork := proveCmd.String("network", "testnet", "chain network name")
	proveIndex := proveCmd.Uint64("index", 0, "pointer index to prove")
	proveTx := proveCmd.String("tx", "", "store transaction digest (optional)")
	proveContent := proveCmd.String("content", "", "path to plaintext to bind by hash (optional)")
	proveOut := proveCmd.String("out", "", "write proof JSON to file instead of stdout")

	// ---- verify ----
	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifyProof := verifyCmd.String("proof", "", "path to proof JSON")
	verifyRPC := verifyCmd.String("rpc", defaultRPCURL, "fullnode RPC URL")
	verifyBlobDir := verifyCmd.String("blob-dir", "", "local blob directory instead of Walrus")
	verifyMongoURI := verifyCmd.String("mongo", "", "MongoDB URI instead of Walrus")
	verifyAggregator := verifyCmd.String("aggregator", "", "Walrus aggregator URL")
	verifyContent := verifyCmd.String("content", "", "path to plaintext to check against contentHash")

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "wallet-init":
		_ = winitCmd.Parse(os.Args[2:])
		dieIf(cmdWalletInit(*winitKeystore))

	case "wallet-addr":
		_ = waddrCmd.Parse(os.Args[2:])
		dieIf(cmdWalletAddr(*waddrKeystore))

	case "create-vault":
		_ = cvCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*cvPackage, *cvRPC)
		dieIf(err)
		printJSON(cli.BuildCreateVault())

	case "store":
		_ = storeCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*storePackage, *storeRPC)
		dieIf(err)
		blobs, err := buildBlobStore(*storeBlobDir, *storeMongoURI, *storePublisher, *storeAggregator, *storeEpochs)
		dieIf(err)
		dieIf(cmdStore(cli, blobs, *storeKeystore, *storeVault, *storeText, *storeRole, *storeBatch))

	case "history":
		_ = histCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*histPackage, *histRPC)
		dieIf(err)
		blobs, err := buildBlobStore(*histBlobDir, *histMongoURI, "", *histAggregator, 0)
		dieIf(err)
		dieIf(cmdHistory(cli, blobs, *histKeystore, *histVault))

	case "vaults":
		_ = vaultsCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*vaultsPackage, *vaultsRPC)
		dieIf(err)
		dieIf(cmdVaults(cli, *vaultsOwner, *vaultsKeystore))

	case "grant":
		_ = grantCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*grantPackage, *grantRPC)
		dieIf(err)
		if *grantVault == "" || *grantGrantee == "" {
			dieIf(errors.New("--vault and --grantee required"))
		}
		printJSON(cli.BuildGrantAccess(*grantVault, *grantGrantee, uint8(*grantScope), *grantExpires))

	case "revoke":
		_ = revokeCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*revokePackage, *revokeRPC)
		dieIf(err)
		if *revokeVault == "" || *revokeGrantee == "" {
			dieIf(errors.New("--vault and --grantee required"))
		}
		printJSON(cli.BuildRevokeAccess(*revokeVault, *revokeGrantee))

	case "delete":
		_ = delCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*delPackage, *delRPC)
		dieIf(err)
		if *delVault == "" {
			dieIf(errors.New("--vault required"))
		}
		printJSON(cli.BuildDeleteBlob(*delVault, *delIndex))

	case "prove":
		_ = proveCmd.Parse(os.Args[2:])
		cli, err := buildLedger(*provePackage, *proveRPC)
		dieIf(err)
		dieIf(cmdProve(cli, *proveVault, *proveIndex, *proveTx, *proveContent, *proveNetwork, *proveOut))

	case "verify":
		_ = verifyCmd.Parse(os.Args[2:])
		blobs, err := buildBlobStore(*verifyBlobDir, *verifyMongoURI, "", *verifyAggregator, 0)
		dieIf(err)
		dieIf(cmdVerify(*verifyProof, *verifyRPC, *verifyContent, blobs))

	default:
		usage()
	}
}

// ============ Helper Functions ============

func usage() {
	fmt.Print(`mindvault commands:

  wallet-init  --keystore path
  wallet-addr  --keystore path
  create-vault --package ID [--rpc URL]
  store        --keystore path --vault ID --package ID --text "..." [--role user] [--batch file]
               [--blob-dir dir | --mongo URI | --publisher URL --aggregator URL --epochs N]
  history      --keystore path --vault ID --package ID [--blob-dir dir | --mongo URI | --aggregator URL]
  vaults       --package ID [--owner 0x.. | --keystore path]
  grant        --vault ID --package ID --grantee 0x.. [--scope 0|1] [--expires MS]
  revoke       --vault ID --package ID --grantee 0x..
  delete       --vault ID --package ID --index N
  prove        --vault ID --package ID --index N [--tx DIGEST] [--content file] [--out proof.json]
  verify       --proof proof.json [--blob-dir dir | --mongo URI | --aggregator URL] [--content file]

Transaction commands print a signable call description; execution is the
wallet's job.

Examples:
  mindvault wallet-init --keystore ./wallet.json
  mindvault store --keystore ./wallet.json --vault 0xVAULT --package 0xPKG --text "hello"
  mindvault verify --proof ./proof.json
`)
}

func buildLedger(packageID, rpcURL string) (*ledger.Client, error) {
	return ledger.NewClient(ledger.Config{
		PackageID: packageID,
		Transport: ledger.NewHTTPTransport(rpcURL),
	})
}

func buildBlobStore(blobDir, mongoURI, publisher, aggregator string, epochs int) (storage.BlobStore, error) {
	if blobDir != "" {
		return storage.NewFileBlobStore(blobDir), nil
	}
	if mongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return storage.NewMongoBlobStore(ctx, mongoURI, "mindvault", "blobs")
	}
	return walrus.NewClient(walrus.Config{
		PublisherURL:  publisher,
		AggregatorURL: aggregator,
		Epochs:        epochs,
	}), nil
}

func cmdWalletInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("keystore already exists: %s", path)
	}
	pass, err := promptSecret("Keystore passphrase: ")
	if err != nil {
		return err
	}
	defer crypto.Zero(pass)

	w, err := wallet.NewLocalWallet()
	if err != nil {
		return err
	}
	if err := w.Save(path, pass); err != nil {
		return err
	}
	fmt.Println("Wallet created:", path)
	fmt.Println("Address:", w.Address())
	return nil
}

func cmdWalletAddr(path string) error {
	w, err := unlockWallet(path)
	if err != nil {
		return err
	}
	fmt.Println(w.Address())
	return nil
}

func unlockWallet(path string) (*wallet.LocalWallet, error) {
	pass, err := promptSecret("Keystore passphrase: ")
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(pass)
	return wallet.Load(path, pass)
}

func openSession(ctx context.Context, keystorePath string) (*session.Session, *wallet.LocalWallet, error) {
	w, err := unlockWallet(keystorePath)
	if err != nil {
		return nil, nil, err
	}
	sess := session.New(nil)
	if err := sess.Initialize(ctx, w); err != nil {
		return nil, nil, err
	}
	return sess, w, nil
}

func cmdStore(cli *ledger.Client, blobs storage.BlobStore, keystorePath, vaultID, text, role, batchPath string) error {
	if vaultID == "" {
		return errors.New("--vault required")
	}
	if text == "" && batchPath == "" {
		return errors.New("--text or --batch required")
	}

	ctx := context.Background()
	sess, _, err := openSession(ctx, keystorePath)
	if err != nil {
		return err
	}
	defer sess.Clear()

	var plaintext []byte
	kind := uint8(payloadSingle)
	if batchPath != "" {
		raw, err := os.ReadFile(batchPath)
		if err != nil {
			return err
		}
		var msgs []history.Message
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return fmt.Errorf("bad batch file: %v", err)
		}
		plaintext, err = history.EncodeBatch(msgs)
		if err != nil {
			return err
		}
		kind = payloadBatch
	} else {
		if role != history.RoleUser && role != history.RoleAssistant {
			return fmt.Errorf("unknown role %q", role)
		}
		plaintext, err = history.EncodeMessage(history.Message{
			Role:      role,
			Content:   text,
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			return err
		}
	}

	payload, err := sess.Encrypt(plaintext)
	if err != nil {
		return err
	}

	blobID, err := blobs.Put(ctx, payload.Ciphertext)
	if err != nil {
		return err
	}
	fmt.Println("Blob stored:", blobID)

	tx := cli.BuildStoreBlob(vaultID, []byte(blobID), kind, payload.Nonce)
	printJSON(tx)
	return nil
}

func cmdHistory(cli *ledger.Client, blobs storage.BlobStore, keystorePath, vaultID string) error {
	if vaultID == "" {
		return errors.New("--vault required")
	}

	ctx := context.Background()
	sess, _, err := openSession(ctx, keystorePath)
	if err != nil {
		return err
	}
	defer sess.Clear()

	asm := &history.Assembler{Ledger: cli, Blobs: blobs}
	msgs, err := asm.Load(ctx, vaultID, sess.Decrypt)
	if err != nil {
		return err
	}
	printJSON(msgs)
	return nil
}

func cmdVaults(cli *ledger.Client, owner, keystorePath string) error {
	if owner == "" {
		w, err := unlockWallet(keystorePath)
		if err != nil {
			return err
		}
		owner = w.Address()
	}
	vaults, err := cli.ListVaultsOwnedBy(context.Background(), owner)
	if err != nil {
		return err
	}
	printJSON(vaults)
	return nil
}

func cmdProve(cli *ledger.Client, vaultID string, index uint64, txDigest, contentPath, network, outPath string) error {
	if vaultID == "" {
		return errors.New("--vault required")
	}

	ctx := context.Background()
	vault, err := cli.GetVaultState(ctx, vaultID)
	if err != nil {
		return err
	}
	ptr, err := cli.GetPointer(ctx, vaultID, index)
	if err != nil {
		return err
	}

	var content string
	if contentPath != "" {
		raw, err := os.ReadFile(contentPath)
		if err != nil {
			return err
		}
		content = string(raw)
	}

	p := proof.Generate(proof.GenerateParams{
		VaultID:        vault.ID,
		VaultOwner:     vault.Owner,
		BlobIndex:      ptr.Index,
		BlobID:         ptr.BlobID,
		ChainTimestamp: ptr.CreatedAt,
		StoreTxDigest:  txDigest,
		Content:        content,
		Network:        network,
		PackageID:      cli.PackageID(),
	})
	out, err := proof.Marshal(p)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return err
		}
		fmt.Println("Proof written:", outPath)
		return nil
	}
	fmt.Println(string(out))
	return nil
}

func cmdVerify(proofPath, rpcURL, contentPath string, blobs storage.BlobStore) error {
	if proofPath == "" {
		return errors.New("--proof required")
	}
	raw, err := os.ReadFile(proofPath)
	if err != nil {
		return err
	}
	p, err := proof.Parse(raw)
	if err != nil {
		return err
	}

	cli, err := buildLedger(p.PackageID, rpcURL)
	if err != nil {
		return err
	}
	v := &proof.Verifier{Ledger: cli, Blobs: blobs}
	res, err := v.Verify(context.Background(), p)
	if err != nil {
		return err
	}

	if contentPath != "" && p.ContentHash != "" {
		content, err := os.ReadFile(contentPath)
		if err != nil {
			return err
		}
		if proof.ContentHash(string(content)) != p.ContentHash {
			res.Valid = false
			res.Details = "content hash does not match proof"
		}
	}

	printJSON(res)
	if !res.Valid {
		os.Exit(1)
	}
	return nil
}

// ============ Utilities ============

func promptSecret(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	br := bufio.NewReader(os.Stdin)
	pass, err := br.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	if len(pass) > 0 && pass[len(pass)-1] == '\n' {
		pass = pass[:len(pass)-1]
	}
	return pass, nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func dieIf(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
