package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteBody = `{"inputMint":"So11111111111111111111111111111111111111112","outputMint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","inAmount":"1000000000","outAmount":"150123456","otherAmountThreshold":"149372839","swapMode":"ExactIn","slippageBps":50,"priceImpactPct":"0.0012","routePlan":[{"swapInfo":{"ammKey":"abc","label":"Whirlpool","inputMint":"So11111111111111111111111111111111111111112","outputMint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","inAmount":"1000000000","outAmount":"150123456"},"percent":100,"bps":10000}],"extraField":{"kept":true}}`

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestClient_Quote(t *testing.T) {
	var gotQuery map[string][]string
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", testLogger())
	res, err := c.Quote(context.Background(), QuoteRequest{
		InputMint:                  "So11111111111111111111111111111111111111112",
		OutputMint:                 "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:                     "1000000000",
		SlippageBps:                50,
		RestrictIntermediateTokens: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, []string{"true"}, gotQuery["restrictIntermediateTokens"])
	assert.Equal(t, []string{"50"}, gotQuery["slippageBps"])
	assert.Equal(t, []string{"1000000000"}, gotQuery["amount"])

	assert.Equal(t, "150123456", res.OutAmount)
	assert.Equal(t, []string{"Whirlpool"}, res.Labels())
	assert.JSONEq(t, quoteBody, string(res.Raw), "raw body kept verbatim, unknown fields included")
}

func TestClient_Quote_RestrictFalseIsSent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("restrictIntermediateTokens")
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	_, err := c.Quote(context.Background(), QuoteRequest{InputMint: "a", OutputMint: "b", Amount: "1"})
	require.NoError(t, err)
	assert.Equal(t, "false", got)
}

func TestClient_Quote_RoutingOptions(t *testing.T) {
	var got []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query())
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	_, err := c.Quote(context.Background(), QuoteRequest{
		InputMint:        "a",
		OutputMint:       "b",
		Amount:           "1",
		OnlyDirectRoutes: true,
		MaxAccounts:      40,
		ExcludeDexes:     []string{"Obric V2", "Saber"},
	})
	require.NoError(t, err)
	_, err = c.Quote(context.Background(), QuoteRequest{InputMint: "a", OutputMint: "b", Amount: "1"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "true", got[0].Get("onlyDirectRoutes"))
	assert.Equal(t, "40", got[0].Get("maxAccounts"))
	assert.Equal(t, "Obric V2,Saber", got[0].Get("excludeDexes"))

	for _, key := range []string{"onlyDirectRoutes", "maxAccounts", "excludeDexes"} {
		assert.False(t, got[1].Has(key), key)
	}
}

func TestClient_Quote_HTTPError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Could not find any route"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	_, err := c.Quote(context.Background(), QuoteRequest{InputMint: "a", OutputMint: "b", Amount: "1"})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "Could not find any route")
	assert.Equal(t, 1, calls, "no retry")
}

func TestClient_Quote_RequiredFields(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", testLogger())
	_, err := c.Quote(context.Background(), QuoteRequest{OutputMint: "b", Amount: "1"})
	assert.Error(t, err)
}

func TestClient_Swap(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"swapTransaction":"AQID","lastValidBlockHeight":1234}`))
	}))
	defer srv.Close()

	fee := uint64(5000)
	c := NewClient(srv.URL, "", testLogger())
	res, err := c.Swap(context.Background(), SwapRequest{
		QuoteResponse:             json.RawMessage(quoteBody),
		UserPublicKey:             "wallet",
		WrapAndUnwrapSol:          true,
		DestinationTokenAccount:   "ata",
		DynamicComputeUnitLimit:   true,
		PrioritizationFeeLamports: &fee,
	})
	require.NoError(t, err)
	assert.Equal(t, "AQID", res.SwapTransaction)
	assert.Equal(t, uint64(1234), res.LastValidBlockHeight)

	assert.Equal(t, "wallet", got["userPublicKey"])
	assert.Equal(t, true, got["wrapAndUnwrapSol"])
	assert.Equal(t, "ata", got["destinationTokenAccount"])
	assert.Equal(t, float64(5000), got["prioritizationFeeLamports"])

	quote, _ := json.Marshal(got["quoteResponse"])
	assert.JSONEq(t, quoteBody, string(quote))
}

func TestClient_Swap_SimulationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"swapTransaction":"AQID","simulationError":{"errorCode":"TRANSACTION_ERROR","error":"custom program error: 0x1771"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	res, err := c.Swap(context.Background(), SwapRequest{QuoteResponse: json.RawMessage(`{}`), UserPublicKey: "w"})
	require.NoError(t, err)
	require.NotNil(t, res.SimulationError)
	assert.Equal(t, "TRANSACTION_ERROR: custom program error: 0x1771", res.SimulationError.String())
}

func TestClient_Swap_EmptyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lastValidBlockHeight":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	_, err := c.Swap(context.Background(), SwapRequest{QuoteResponse: json.RawMessage(`{}`), UserPublicKey: "w"})
	assert.Error(t, err)
}

func TestClient_Swap_OmitsEmptyDestination(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"swapTransaction":"AQID"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	_, err := c.Swap(context.Background(), SwapRequest{QuoteResponse: json.RawMessage(`{}`), UserPublicKey: "w"})
	require.NoError(t, err)
	_, present := got["destinationTokenAccount"]
	assert.False(t, present)
}
