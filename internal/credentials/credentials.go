// Package credentials generates player usernames and PINs.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// PINLength is the number of digits in a generated PIN
const PINLength = 6

var adjectives = []string{
	"happy", "sunny", "brave", "bright", "swift", "clever", "jolly", "mighty",
	"lucky", "magic", "bouncy", "daring", "eager", "gentle", "lively", "merry",
	"noble", "quick", "snappy", "zippy", "bold", "cosmic", "epic", "groovy",
	"cheerful", "flying", "jazzy", "kindly", "perky", "royal", "turbo", "dynamic",
	"fearless", "curious", "shiny", "speedy", "sparkly", "friendly", "playful", "witty",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "otter", "wolf", "bear",
	"fox", "hawk", "phoenix", "rocket", "wizard", "knight", "robot", "explorer",
	"ranger", "captain", "comet", "thunder", "storm", "racer", "falcon", "lynx",
	"lion", "shark", "unicorn", "ninja", "pirate", "astronaut", "champion", "tornado",
	"penguin", "koala", "badger", "beaver", "owl", "meteor", "voyager", "pilot",
}

// GenerateUsername returns a random "adjective-noun" username
func GenerateUsername() (string, error) {
	adjective, err := pick(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := pick(nouns)
	if err != nil {
		return "", err
	}
	return adjective + "-" + noun, nil
}

// GeneratePIN returns a random numeric PIN of PINLength digits
func GeneratePIN() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < PINLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", PINLength, n.Int64()), nil
}

func pick(words []string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", err
	}
	return words[n.Int64()], nil
}
