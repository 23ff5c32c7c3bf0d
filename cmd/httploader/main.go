package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"math/rand"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/danilovkiri/dk_go_post_board/internal/api/rest/modeldto"
)

// randUserID returns ids around the accepted range so that validation failures are loaded too.
func randUserID() string {
	return strconv.Itoa(rand.Intn(13) - 1)
}

func gzipForm(values url.Values) []byte {
	var b bytes.Buffer
	gz := gzip.NewWriter(&b)
	if _, err := gz.Write([]byte(values.Encode())); err != nil {
		log.Fatal().Err(err).Msg("compressing form")
	}
	if err := gz.Close(); err != nil {
		log.Fatal().Err(err).Msg("compressing form")
	}
	return b.Bytes()
}

func main() {
	address := pflag.StringP("address", "a", "http://localhost:8080", "Server address")
	iterations := pflag.IntP("iterations", "n", 20, "Requests per endpoint")
	pause := pflag.Duration("pause", time.Second, "Pause between endpoints")
	pflag.Parse()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	const page = "/"
	const clearPage = "/clear"
	const state = "/api/state"
	const posts = "/api/posts"
	const ping = "/ping"

	// one cookie jar per loader keeps every request on the same client slots
	client := resty.New().SetBaseURL(*address)
	codes := map[string]map[int]int{}
	record := func(endpoint string, res *resty.Response, err error) {
		if err != nil {
			log.Fatal().Err(err).Str("endpoint", endpoint).Msg("request failed")
		}
		if codes[endpoint] == nil {
			codes[endpoint] = map[int]int{}
		}
		codes[endpoint][res.StatusCode()]++
	}

	log.Info().Msg("performing ping loading")
	for i := 0; i < *iterations; i++ {
		res, err := client.R().Get(ping)
		record("ping", res, err)
	}
	time.Sleep(*pause)

	log.Info().Msg("performing page form loading")
	for i := 0; i < *iterations; i++ {
		form := url.Values{"userId": {randUserID()}}
		if i%2 == 0 {
			form.Set("rememberUser", "on")
		}
		req := client.R().SetHeader("Content-Type", "application/x-www-form-urlencoded")
		if i%3 == 0 {
			req.SetHeader("Content-Encoding", "gzip").SetBody(gzipForm(form))
		} else {
			req.SetBody(form.Encode())
		}
		res, err := req.Post(page)
		record("form", res, err)
	}
	time.Sleep(*pause)

	log.Info().Msg("performing page loading")
	for i := 0; i < *iterations; i++ {
		res, err := client.R().SetHeader("Accept-Encoding", "gzip").Get(page)
		record("page", res, err)
	}
	time.Sleep(*pause)

	log.Info().Msg("performing JSON loading")
	for i := 0; i < *iterations; i++ {
		reqBody, err := json.Marshal(modeldto.RequestPosts{UserID: modeldto.UserIDInput(randUserID()), Remember: i%2 == 1})
		if err != nil {
			log.Fatal().Err(err).Msg("encoding request")
		}
		res, err := client.R().SetHeader("Content-Type", "application/json").SetBody(reqBody).Post(posts)
		record("json", res, err)
		res, err = client.R().Get(state)
		record("state", res, err)
		if res.StatusCode() == 200 {
			var resPage modeldto.ResponsePage
			if err := json.Unmarshal(res.Body(), &resPage); err == nil {
				log.Debug().Int("iteration", i).Int("posts", len(resPage.Posts)).Str("status", resPage.Status.Message).Msg("state")
			}
		}
	}
	time.Sleep(*pause)

	log.Info().Msg("performing clear loading")
	for i := 0; i < *iterations; i++ {
		var (
			res *resty.Response
			err error
		)
		if i%2 == 0 {
			res, err = client.R().Post(clearPage)
		} else {
			res, err = client.R().Delete(posts)
		}
		record("clear", res, err)
	}

	for endpoint, byCode := range codes {
		log.Info().Str("endpoint", endpoint).Interface("codes", byCode).Msg("summary")
	}
}
