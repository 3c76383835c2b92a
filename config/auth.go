package config

import "github.com/spf13/viper"

// Auth auth config struct
type Auth struct {
	JWT       *JWT
	Whitelist []string
}

// getAuth returns the auth config.
func getAuth(v *viper.Viper) *Auth {
	return &Auth{
		JWT:       getJWT(v),
		Whitelist: v.GetStringSlice("auth.whitelist"),
	}
}

// JWT jwt config struct
type JWT struct {
	Secret string
	Expire int
}

// getJWT returns the jwt config.
func getJWT(v *viper.Viper) *JWT {
	return &JWT{
		Secret: v.GetString("auth.jwt.secret"),
		Expire: getIntOrDefault(v, "auth.jwt.expire", 24),
	}
}
