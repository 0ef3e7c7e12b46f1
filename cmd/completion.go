package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_passvault() {
    local cur prev words cword
    _init_completion || return

    local commands="shell create ls add get rm status keyring forget help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        ls|add|get|rm|forget)
            if [[ $cword -eq 2 ]]; then
                local vaults
                vaults=$(passvault ls 2>/dev/null | sed -n 's/^  //p')
                COMPREPLY=($(compgen -W "$vaults" -- "$cur"))
            elif [[ "$cmd" == "get" && "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-p --password" -- "$cur"))
            elif [[ "$cmd" == "rm" && "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-f --force" -- "$cur"))
            fi
            ;;
        keyring)
            if [[ $cword -eq 2 ]]; then
                COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            else
                local vaults
                vaults=$(passvault ls 2>/dev/null | sed -n 's/^  //p')
                COMPREPLY=($(compgen -W "$vaults" -- "$cur"))
            fi
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _passvault passvault
`

const zshCompletion = `#compdef passvault

_passvault() {
    local -a commands
    commands=(
        'shell:Start the interactive shell'
        'create:Create a new vault'
        'ls:List vaults, or the entries of a vault'
        'add:Add an entry to a vault'
        'get:Show an entry'
        'rm:Remove an entry from a vault'
        'status:Show vault integrity and catalog data'
        'keyring:Manage vault password in OS keyring'
        'forget:Drop catalog data of a deleted vault'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'passvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                ls|add|forget)
                    _arguments '2:vault:_passvault_vaults'
                    ;;
                get)
                    _arguments \
                        '(-p --password)'{-p,--password}'[Print only the password]' \
                        '2:vault:_passvault_vaults'
                    ;;
                rm)
                    _arguments \
                        '(-f --force)'{-f,--force}'[Remove without confirmation]' \
                        '2:vault:_passvault_vaults'
                    ;;
                keyring)
                    _arguments \
                        '2:subcommand:(save delete status)' \
                        '3:vault:_passvault_vaults'
                    ;;
                help)
                    _describe -t commands 'passvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_passvault_vaults() {
    local -a vaults
    vaults=(${(f)"$(passvault ls 2>/dev/null | sed -n 's/^  //p')"})
    _describe -t vaults 'vaults' vaults
}

_passvault "$@"
`

const fishCompletion = `# passvault fish completions

set -l commands shell create ls add get rm status keyring forget help completion

complete -c passvault -f

function __passvault_vaults
    passvault ls 2>/dev/null | sed -n 's/^  //p'
end

# Commands
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a shell -d 'Start the interactive shell'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a create -d 'Create a new vault'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List vaults or entries'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a add -d 'Add an entry'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a get -d 'Show an entry'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove an entry'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a forget -d 'Forget a deleted vault'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# vault names
complete -c passvault -n "__fish_seen_subcommand_from ls add get rm forget" -a "(__passvault_vaults)"

# flags
complete -c passvault -n "__fish_seen_subcommand_from get" -s p -l password -d 'Print only the password'
complete -c passvault -n "__fish_seen_subcommand_from rm" -s f -l force -d 'Remove without confirmation'

# keyring subcommands
complete -c passvault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c passvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c passvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
