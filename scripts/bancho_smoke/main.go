package main

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kolejker/OsaltServer/internal/proto"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:13381/", "bancho endpoint")
	user := flag.String("user", "tester", "username to log in with")
	password := flag.String("password", "password", "plaintext password")
	text := flag.String("text", "hello from smoke test", "message text to send to #osu")
	timeout := flag.Duration("timeout", 5*time.Second, "per request timeout")
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	sum := md5.Sum([]byte(*password))
	loginBody := fmt.Sprintf("%s\n%s\nsmoke|0|1|x:y|0\n", *user, hex.EncodeToString(sum[:]))

	resp, body := post(client, *addr, "", []byte(loginBody))
	token := resp.Header.Get("cho-token")
	dump("login", body)
	if token == "" {
		log.Fatalf("login rejected")
	}

	var batch []byte
	batch = append(batch, proto.CreatePacket(proto.InJoinChannel, proto.WriteString("#osu"))...)
	batch = append(batch, proto.CreatePacket(proto.InSendMessage,
		proto.NewWriter().String("#osu").String(*text).String("").Bytes())...)
	batch = append(batch, proto.CreatePacket(proto.InReceiveUpdates, nil)...)

	_, body = post(client, *addr, token, batch)
	dump("exchange", body)
}

func post(client *http.Client, addr, token string, body []byte) (*http.Response, []byte) {
	req, err := http.NewRequest(http.MethodPost, addr, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("osu-token", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("unexpected status %d", resp.StatusCode)
	}
	return resp, data
}

func dump(stage string, buf []byte) {
	r := proto.NewReader(buf)
	for r.Remaining() >= proto.HeaderSize {
		h, err := r.ReadHeader()
		if err != nil {
			log.Fatalf("%s: %v", stage, err)
		}
		if _, err := r.ReadBytes(int(h.Length)); err != nil {
			log.Fatalf("%s: %v", stage, err)
		}
		fmt.Printf("%s: packet id=%d len=%d\n", stage, h.ID, h.Length)
	}
}
